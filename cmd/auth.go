package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/desertthunder/mlcc/internal/server"
	"github.com/desertthunder/mlcc/internal/services"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultLoginTimeout = 2 * time.Minute

// AuthLogin runs the authorization code flow and stores the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	oauthConfig, err := services.NewOAuthConfig(r.config.Auth)
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, oauthConfig, cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	file := services.NewTokenFile(r.config.Auth.TokenPath)
	if err := file.Save(token); err != nil {
		return err
	}
	r.logger.Info("token saved", "path", file.Path(), "expiry", token.Expiry)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", file.Path())
	r.writePlain("You can now use: mlcc channels list\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config, timeout time.Duration) (*oauth2.Token, error) {
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}

	path := "/callback"
	if u, err := url.Parse(config.RedirectURL); err == nil && u.Path != "" {
		path = u.Path
	}

	state := shared.GenerateID()
	oauthHandler := server.NewOAuthHandler(ctx, config, state, path)
	router := server.NewCallbackRouter(server.LoggingMiddleware(r.logger))
	router.Mount(oauthHandler)

	callback, err := server.ListenRedirect(config.RedirectURL, router)
	if err != nil {
		return nil, err
	}
	callback.Serve()
	r.logger.Infof("waiting for OAuth callback at %v", callback.Addr())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := callback.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := config.AuthCodeURL(state)
	r.writePlain("→ Opening browser to sign in...\n")
	if err := r.openURL(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-callback.Errors():
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

// AuthStatus reports the stored token and whether the channel API accepts it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	if os.Getenv("MLCC_TOKEN") != "" {
		r.writePlain("Token: MLCC_TOKEN environment variable\n")
	} else {
		file := services.NewTokenFile(r.config.Auth.TokenPath)
		token, err := file.Load()
		if err != nil {
			return err
		}
		r.writePlain("Token: %s\n", file.Path())
		switch {
		case token.Expiry.IsZero():
			r.writePlain("Expires: never\n")
		case token.Valid():
			r.writePlain("Expires: %s\n", token.Expiry.Format(time.RFC3339))
		case token.RefreshToken != "":
			r.writePlain("Expires: expired, will refresh on next request\n")
		default:
			r.writePlain("Expires: expired, run 'mlcc auth login'\n")
		}
	}

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	channels, err := api.ListChannels(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return r.writePlain("✓ Channel API reachable (%d channels)\n", len(channels))
}

// AuthLogout deletes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	file := services.NewTokenFile(r.config.Auth.TokenPath)
	if err := os.Remove(file.Path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r.writePlain("No token stored at %s\n", file.Path())
		}
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return r.writePlain("✓ Removed %s\n", file.Path())
}
