package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token is available.
var ErrNoToken = errors.New("no OAuth token available")

// Provider is an interface for providing OAuth tokens to calendar adapters.
// This abstraction allows different token sources (file-based, static, etc.)
type Provider interface {
	// Token returns a currently valid token.
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken reports whether a token is configured at all.
	HasToken() bool
}

// FileProvider reads an oauth2.Token JSON document from disk. The file is
// re-read whenever the cached token stops being valid, so an external process
// can rotate it in place.
type FileProvider struct {
	path string

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewFileProvider creates a file-based token provider.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: strings.TrimSpace(path)}
}

// HasToken checks if the token file exists.
func (p *FileProvider) HasToken() bool {
	if p.path == "" {
		return false
	}
	_, err := os.Stat(p.path)
	return err == nil
}

// Token returns the cached token or reloads it from disk.
func (p *FileProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.cached.Valid() {
		return p.cached, nil
	}
	if p.path == "" {
		return nil, ErrNoToken
	}

	tok, err := ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	if !tok.Valid() {
		return nil, fmt.Errorf("token in %s has expired", p.path)
	}
	p.cached = tok
	return tok, nil
}

// ReadFile decodes a token file. A file holding only an access token (no JSON)
// is accepted as a bearer token without expiry.
func ReadFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoToken, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoToken, path)
	}
	if !strings.HasPrefix(raw, "{") {
		return &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}, nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s has no access_token", ErrNoToken, path)
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	return &tok, nil
}

// StaticProvider always returns the same token.
type StaticProvider struct {
	token *oauth2.Token
}

// NewStaticProvider wraps a fixed access token.
func NewStaticProvider(accessToken string) *StaticProvider {
	return &StaticProvider{token: &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}}
}

// Token returns the fixed token.
func (p *StaticProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	if p.token.AccessToken == "" {
		return nil, ErrNoToken
	}
	return p.token, nil
}

// HasToken reports whether the access token is set.
func (p *StaticProvider) HasToken() bool {
	return p.token.AccessToken != ""
}

type providerSource struct {
	ctx      context.Context
	provider Provider
}

func (s providerSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}

// TokenSource adapts a Provider to oauth2.TokenSource.
func TokenSource(ctx context.Context, p Provider) oauth2.TokenSource {
	return providerSource{ctx: ctx, provider: p}
}

// HTTPClient returns an HTTP client that authenticates every request with a
// token from p. The client is configured to use HTTP/1.1 to avoid HTTP/2
// protocol errors.
func HTTPClient(ctx context.Context, p Provider) *http.Client {
	client := oauth2.NewClient(ctx, TokenSource(ctx, p))
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}
