package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenFile is the token's file name inside the data directory.
const TokenFile = "google-token.json"

// TokenPath returns the token location for dataDir.
func TokenPath(dataDir string) string {
	return filepath.Join(dataDir, TokenFile)
}

// LoadToken reads a saved token. A missing file yields ErrNotAuthorized.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, ErrNotAuthorized
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*")
	if err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// DeleteToken removes a saved token. Removing a missing token is not an error.
func DeleteToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// persistingSource saves refreshed tokens back to disk.
type persistingSource struct {
	src  oauth2.TokenSource
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return nil, fmt.Errorf("%w: %w", ErrNotAuthorized, err)
		}
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := SaveToken(p.path, tok); err != nil {
			p.log.Warn("saving refreshed google token", zap.Error(err))
		} else {
			p.log.Debug("saved refreshed google token", zap.Time("expiry", tok.Expiry))
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

// TokenSource loads the saved token and returns a source that refreshes it
// as needed, persisting every new token to path.
func TokenSource(ctx context.Context, cfg OAuthConfig, path string, log *zap.Logger) (oauth2.TokenSource, error) {
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	src := cfg.oauth2Config("").TokenSource(ctx, tok)
	return oauth2.ReuseTokenSource(tok, &persistingSource{
		src:  src,
		path: path,
		log:  log,
		last: tok.AccessToken,
	}), nil
}
