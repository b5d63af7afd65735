package providers

import (
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/config"
	"github.com/bookvault/bookvault-server/internal/logger"
)

// certFetchTimeout bounds a single download of the signing certificates.
const certFetchTimeout = 10 * time.Second

// ProvideVerifier provides the Firebase ID token verifier. Certificates are
// fetched lazily on the first authenticated request.
func ProvideVerifier(i do.Injector) (*auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keys := auth.NewCertSource(cfg.Firebase.CertsURL, &http.Client{Timeout: certFetchTimeout})

	log.Info("Token verifier configured",
		"project_id", cfg.Firebase.ProjectID,
		"certs_url", cfg.Firebase.CertsURL,
	)

	return auth.NewVerifier(cfg.Firebase.ProjectID, keys), nil
}
