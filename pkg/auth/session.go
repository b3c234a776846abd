// Package auth owns the process-wide authenticated channel to the account.
//
// A Session is created explicitly at startup, establishes its credential
// lazily on first use, and reuses it for every later call. There is no
// refresh: an expired credential surfaces as a transport failure.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/logger"
)

// ErrNoCredentials is returned when the session has nothing to authenticate with
var ErrNoCredentials = errors.New("no credentials configured")

// Token type header values understood by the REST APIs
const (
	TokenTypeKeyPairJWT       = "KEYPAIR_JWT"
	TokenTypeProgrammatic     = "PROGRAMMATIC_ACCESS_TOKEN"
	tokenTypeHeader           = "X-Snowflake-Authorization-Token-Type"
	defaultKeyPairJWTLifetime = 59 * time.Minute
)

// Session is the authenticated channel shared by the agent and query clients
type Session struct {
	cfg        config.AuthConfig
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	tokenType string
}

// NewSession creates a session; no credential work happens until first use
func NewSession(cfg config.AuthConfig, timeout time.Duration) *Session {
	return &Session{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// HTTPClient returns the client whose timeout bounds every call on this session
func (s *Session) HTTPClient() *http.Client {
	return s.httpClient
}

// Authorize sets the authorization headers on req, establishing the
// credential on the first call
func (s *Session) Authorize(ctx context.Context, req *http.Request) error {
	token, tokenType, err := s.credential(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(tokenTypeHeader, tokenType)
	return nil
}

func (s *Session) credential(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, s.tokenType, nil
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	log := logger.WithComponent("auth")
	token, tokenType, err := s.establish()
	if err != nil {
		log.Error("Failed to establish session", "method", s.cfg.Method, "error", err)
		return "", "", err
	}

	s.token, s.tokenType = token, tokenType
	log.Info("Session established", "method", s.cfg.Method, "user", s.cfg.User)
	return token, tokenType, nil
}

func (s *Session) establish() (string, string, error) {
	switch s.cfg.Method {
	case config.AuthMethodToken:
		if s.cfg.Token == "" {
			return "", "", ErrNoCredentials
		}
		return s.cfg.Token, TokenTypeProgrammatic, nil

	case config.AuthMethodKeyPair, "":
		if s.cfg.PrivateKeyPath == "" || s.cfg.Account == "" || s.cfg.User == "" {
			return "", "", ErrNoCredentials
		}
		key, err := LoadPrivateKey(s.cfg.PrivateKeyPath)
		if err != nil {
			return "", "", err
		}
		lifetime := s.cfg.TokenLifetime
		if lifetime <= 0 {
			lifetime = defaultKeyPairJWTLifetime
		}
		token, err := NewKeyPairJWT(s.cfg.Account, s.cfg.User, key, s.now(), lifetime)
		if err != nil {
			return "", "", err
		}
		return token, TokenTypeKeyPairJWT, nil

	default:
		return "", "", fmt.Errorf("unsupported auth method %q", s.cfg.Method)
	}
}

// Close drops the credential and idle connections
func (s *Session) Close() {
	s.mu.Lock()
	s.token, s.tokenType = "", ""
	s.mu.Unlock()
	s.httpClient.CloseIdleConnections()
}
