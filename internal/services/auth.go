package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/mlcc/internal/shared"
	"golang.org/x/oauth2"
)

// NewOAuthConfig builds the authorization code flow client for the identity provider.
func NewOAuthConfig(cfg shared.AuthConfig) (*oauth2.Config, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: auth.client_id", shared.ErrMissingCredentials)
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("%w: auth.auth_url and auth.token_url", shared.ErrMissingConfig)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}, nil
}

// TokenFile persists an [oauth2.Token] as JSON.
type TokenFile struct {
	path string
}

// NewTokenFile returns a token file at path; "~" is expanded.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: shared.ExpandHome(path)}
}

func (f *TokenFile) Path() string { return f.path }

// Load reads the stored token. A missing file yields [shared.ErrNotAuthenticated].
func (f *TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no token at %s, run 'mlcc auth login'", shared.ErrNotAuthenticated, f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &token, nil
}

// Save writes the token with owner-only permissions.
func (f *TokenFile) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// persistingTokenSource saves every refreshed token back to the file.
type persistingTokenSource struct {
	mu   sync.Mutex
	src  oauth2.TokenSource
	file *TokenFile
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.file.Save(token); err != nil {
			return nil, err
		}
	}
	return token, nil
}

// NewTokenSource loads the stored token and refreshes it through cfg when it expires.
//
// A nil cfg yields a static source that never refreshes.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, file *TokenFile) (oauth2.TokenSource, error) {
	token, err := file.Load()
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		if !token.Valid() {
			return nil, shared.ErrTokenExpired
		}
		return oauth2.StaticTokenSource(token), nil
	}

	if !token.Valid() && token.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	src := oauth2.ReuseTokenSource(token, cfg.TokenSource(ctx, token))
	return &persistingTokenSource{src: src, file: file, last: token.AccessToken}, nil
}

// StaticToken wraps a raw bearer token, e.g. from MLCC_TOKEN.
func StaticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}
