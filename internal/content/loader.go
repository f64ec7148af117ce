package content

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ErrCertificateRejected is returned when an http(s) load fails TLS
// certificate verification.
var ErrCertificateRejected = errors.New("certificate rejected")

// Loader verifies that the window's content can be reached. Local file
// content is trusted without any certificate check. Every other scheme is
// verified strictly and a certificate error fails the load.
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// NewLoader creates a loader. A nil client means a 10s-timeout default.
func NewLoader(client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{client: client, logger: logger}
}

// Load fetches rawURL once. file:// targets must exist and be regular
// files; http(s) targets must answer with a non-error status.
func (l *Loader) Load(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid content url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "file":
		return loadFile(u)
	case "http", "https":
		return l.loadHTTP(ctx, u)
	default:
		return fmt.Errorf("unsupported content url scheme %q", u.Scheme)
	}
}

func loadFile(u *url.URL) error {
	path := filepath.FromSlash(u.Path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("content file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("content file %s is a directory", path)
	}
	return nil
}

func (l *Loader) loadHTTP(ctx context.Context, u *url.URL) error {
	err := l.get(ctx, u)
	if err != nil && IsCertificateError(err) {
		l.logger.Warn("rejecting content with invalid certificate", "url", u.String(), "err", err)
		return fmt.Errorf("%w: %s: %v", ErrCertificateRejected, u.Host, err)
	}
	return err
}

func (l *Loader) get(ctx context.Context, u *url.URL) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
	}
	return nil
}

// IsCertificateError reports whether err stems from TLS certificate
// verification.
func IsCertificateError(err error) bool {
	var verr *tls.CertificateVerificationError
	var unknown x509.UnknownAuthorityError
	var invalid x509.CertificateInvalidError
	var hostname x509.HostnameError
	return errors.As(err, &verr) ||
		errors.As(err, &unknown) ||
		errors.As(err, &invalid) ||
		errors.As(err, &hostname)
}
