package providers

import "time"

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second
)
