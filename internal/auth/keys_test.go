package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSignedPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

type certServer struct {
	*httptest.Server
	hits  atomic.Int32
	certs atomic.Value // map[string]string
}

func newCertServer(t *testing.T, certs map[string]string, cacheControl string) *certServer {
	t.Helper()
	cs := &certServer{}
	cs.certs.Store(certs)
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		cs.hits.Add(1)
		w.Header().Set("Cache-Control", cacheControl)
		_ = json.NewEncoder(w).Encode(cs.certs.Load())
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestCertSource_CachesUntilMaxAge(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newCertServer(t, map[string]string{"k1": selfSignedPEM(t, key)}, "public, max-age=120, must-revalidate")

	now := time.Now()
	src := NewCertSource(srv.URL, srv.Client())
	src.now = func() time.Time { return now }
	ctx := context.Background()

	got, err := src.PublicKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey.N, got.N)

	_, err = src.PublicKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "second lookup is served from cache")

	now = now.Add(121 * time.Second)
	_, err = src.PublicKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load(), "expired cache refetches")
}

func TestCertSource_UnknownKidRefetchesAtMostOncePerMinute(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemCert := selfSignedPEM(t, key)

	srv := newCertServer(t, map[string]string{"k1": pemCert}, "max-age=3600")

	now := time.Now()
	src := NewCertSource(srv.URL, srv.Client())
	src.now = func() time.Time { return now }
	ctx := context.Background()

	_, err = src.PublicKey(ctx, "k1")
	require.NoError(t, err)

	_, err = src.PublicKey(ctx, "k2")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, int32(1), srv.hits.Load())

	// Rotation: k2 appears upstream.
	srv.certs.Store(map[string]string{"k1": pemCert, "k2": pemCert})
	now = now.Add(2 * time.Minute)

	_, err = src.PublicKey(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestCertSource_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewCertSource(srv.URL, srv.Client()).PublicKey(context.Background(), "k1")
	assert.ErrorContains(t, err, "unexpected status 503")
}

func TestMaxAge(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"public, max-age=19302, must-revalidate, no-transform", 19302 * time.Second},
		{"MAX-AGE=60", time.Minute},
		{"no-cache", defaultCertsTTL},
		{"max-age=abc", defaultCertsTTL},
		{"", defaultCertsTTL},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, maxAge(tt.header))
		})
	}
}

func TestStaticKeySource(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	src := StaticKeySource{"k": &key.PublicKey}

	got, err := src.PublicKey(context.Background(), "k")
	require.NoError(t, err)
	assert.Same(t, &key.PublicKey, got)

	_, err = src.PublicKey(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownKey)
}
