package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/logger"
	"github.com/bookvault/bookvault-server/internal/store/sqlite"
)

var (
	alice = &auth.Identity{UID: "uid-alice", Email: "alice@example.com", Name: "Alice"}
	bob   = &auth.Identity{UID: "uid-bob", Email: "bob@example.com", Name: "Bob"}
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"), logger.Discard().Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
