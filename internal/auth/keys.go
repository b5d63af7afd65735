// Package auth verifies Firebase ID tokens.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrUnknownKey is returned when no public key matches a token's kid.
var ErrUnknownKey = errors.New("unknown signing key")

// KeySource resolves the RSA public key for a key id.
type KeySource interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// StaticKeySource is a fixed kid → key map.
type StaticKeySource map[string]*rsa.PublicKey

// PublicKey implements KeySource.
func (s StaticKeySource) PublicKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := s[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKey
}

const (
	defaultCertsTTL = time.Hour
	// Minimum gap between refetches triggered by an unknown kid.
	minRefreshInterval = time.Minute
)

// CertSource fetches Google's x509 signing certificates (a JSON object of
// kid → PEM certificate) and caches them until the Cache-Control max-age
// of the response expires.
type CertSource struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	ttl       time.Duration
	expiresAt time.Time
	fetchedAt time.Time
}

// NewCertSource creates a CertSource for url. A nil client uses a client
// with a 10 second timeout.
func NewCertSource(url string, client *http.Client) *CertSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CertSource{url: url, client: client, now: time.Now}
}

// PublicKey implements KeySource.
func (s *CertSource) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key, hit := s.keys[kid]
	fresh := s.keys != nil && now.Before(s.expiresAt)
	if hit && fresh {
		return key, nil
	}

	// Keys rotate, so a miss also refetches, at most once a minute. On a
	// failed refetch the previous set keeps serving.
	if s.keys == nil || now.Sub(s.fetchedAt) >= minRefreshInterval {
		err := s.refresh(ctx)
		s.fetchedAt = now
		if err != nil && s.keys == nil {
			return nil, err
		}
		if err == nil {
			s.expiresAt = now.Add(s.ttl)
		}
	}

	if key, ok := s.keys[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKey
}

func (s *CertSource) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("build certs request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch certs: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read certs: %w", err)
	}

	var pems map[string]string
	if err := json.Unmarshal(body, &pems); err != nil {
		return fmt.Errorf("decode certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse cert %s: %w", kid, err)
		}
		keys[kid] = key
	}

	s.keys = keys
	s.ttl = maxAge(resp.Header.Get("Cache-Control"))
	return nil
}

// maxAge extracts max-age from a Cache-Control header, defaulting to an hour.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || secs <= 0 {
			break
		}
		return time.Duration(secs) * time.Second
	}
	return defaultCertsTTL
}
