// Package tls serves the API over HTTPS with certificates managed by CertMagic.
package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"
)

// Config holds TLS configuration.
type Config struct {
	Enabled      bool
	Domains      []string
	Email        string
	CacheDir     string
	Staging      bool // Use Let's Encrypt staging environment
	DNS          DNSConfig
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DNSConfig holds Azure DNS provider configuration for DNS-01 challenges.
// An empty SubscriptionID keeps CertMagic's default HTTP-01 and TLS-ALPN
// challenges.
type DNSConfig struct {
	SubscriptionID    string
	ResourceGroupName string
	ClientID          string // User Assigned Managed Identity client ID (optional)
}

// Enabled reports whether DNS-01 challenges are configured.
func (c DNSConfig) Enabled() bool {
	return c.SubscriptionID != ""
}

// Validate checks the settings needed to obtain certificates.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Domains) == 0 {
		return errors.New("TLS enabled but no domains specified")
	}
	if c.Email == "" {
		return errors.New("TLS enabled but no email specified")
	}
	if c.DNS.Enabled() && c.DNS.ResourceGroupName == "" {
		return errors.New("azure DNS requires a resource group name")
	}
	return nil
}

// Server wraps an HTTP server with automatic TLS.
type Server struct {
	config    Config
	handler   http.Handler
	logger    *slog.Logger
	tlsConfig *tls.Config
	server    *http.Server
}

// NewServer creates a server for handler. With TLS disabled it serves
// plain HTTP.
func NewServer(cfg Config, handler http.Handler, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
	if !cfg.Enabled {
		return s, nil
	}

	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = cfg.Email

	if cfg.Staging {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}

	if cfg.CacheDir != "" {
		certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}

	if cfg.DNS.Enabled() {
		certmagic.DefaultACME.DNS01Solver = &certmagic.DNS01Solver{
			DNSManager: certmagic.DNSManager{
				DNSProvider: &azure.Provider{
					SubscriptionId:    cfg.DNS.SubscriptionID,
					ResourceGroupName: cfg.DNS.ResourceGroupName,
					ClientId:          cfg.DNS.ClientID, // Empty = System Assigned Managed Identity
				},
			},
		}
	}

	tlsConfig, err := certmagic.TLS(cfg.Domains)
	if err != nil {
		return nil, fmt.Errorf("configuring TLS: %w", err)
	}
	s.tlsConfig = tlsConfig
	s.server.TLSConfig = tlsConfig

	return s, nil
}

// ListenAndServe starts the server with TLS if enabled.
func (s *Server) ListenAndServe(addr string) error {
	s.server.Addr = addr

	if !s.config.Enabled {
		s.logger.Info("starting HTTP server (TLS disabled)", "address", addr)
		return s.server.ListenAndServe()
	}

	s.logger.Info("starting HTTPS server",
		"address", addr,
		"domains", s.config.Domains,
		"dns_challenge", s.config.DNS.Enabled(),
	)
	return s.server.ListenAndServeTLS("", "")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// TLSConfig returns the TLS configuration.
func (s *Server) TLSConfig() *tls.Config {
	return s.tlsConfig
}

// ManageCertificates pre-obtains certificates for the configured domains.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.config.Domains)

	if err := certmagic.ManageSync(ctx, s.config.Domains); err != nil {
		return fmt.Errorf("managing certificates: %w", err)
	}

	s.logger.Info("certificates obtained successfully")
	return nil
}
