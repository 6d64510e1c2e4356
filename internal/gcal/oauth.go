// Package gcal talks to the Google Calendar API: the loopback OAuth flow,
// token persistence and a calsync.Remote backed by calendar/v3.
package gcal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"google.golang.org/api/calendar/v3"
)

// ErrNotAuthorized means no usable Google token is available.
var ErrNotAuthorized = errors.New("google calendar not authorized (run `focusflow cal auth`)")

// CallbackPath is the loopback redirect path registered for the OAuth client.
const CallbackPath = "/callback"

// OAuthConfig identifies the OAuth client used for Google Calendar.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectPort is the loopback port for the callback; 0 picks a free port.
	RedirectPort int
	// Endpoint overrides Google's OAuth endpoints.
	Endpoint oauth2.Endpoint
}

// Validate checks that client credentials are configured.
func (c OAuthConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("calendar.client_id and calendar.client_secret must be set")
	}
	if c.RedirectPort < 0 || c.RedirectPort > 65535 {
		return fmt.Errorf("invalid calendar.redirect_port %d", c.RedirectPort)
	}
	return nil
}

func (c OAuthConfig) oauth2Config(redirectURL string) *oauth2.Config {
	ep := c.Endpoint
	if ep.AuthURL == "" {
		ep = endpoints.Google
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     ep,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendar.CalendarScope},
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the installed-app OAuth flow. It listens on the loopback
// interface, hands the consent URL to openURL and exchanges the returned
// code (with PKCE) for a token.
func Authorize(ctx context.Context, cfg OAuthConfig, openURL func(string) error) (*oauth2.Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.RedirectPort)))
	if err != nil {
		return nil, fmt.Errorf("listening for OAuth callback: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	redirect := fmt.Sprintf("http://127.0.0.1:%d%s", port, CallbackPath)
	conf := cfg.oauth2Config(redirect)

	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("generating state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = fmt.Errorf("invalid OAuth state")
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = fmt.Errorf("no authorization code received")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "focusflow is connected to Google Calendar. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()
	defer func() {
		srv.Close()
		<-served
	}()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier))
	if err := openURL(authURL); err != nil {
		return nil, fmt.Errorf("opening consent page: %w", err)
	}

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		code = res.code
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("google returned no refresh token; revoke focusflow's access and authorize again")
	}
	return tok, nil
}
