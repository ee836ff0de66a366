package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/studyx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded default configuration to disk.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.logger.Info("config file created", "path", configPath)
	return r.writePlain("✓ Wrote %s\nEdit [api] base_url to point at your backend.\n", configPath)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.open(); err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupSession imports a logged-in browser session from a copied cURL command.
//
// The cookies (and a bearer token, when present) are stored for the configured backend, then verified by loading
// the profile.
func (r *Runner) SetupSession(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error
	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	cookies := curlHeaders.Cookies()
	token := curlHeaders.BearerToken()
	if len(cookies) == 0 && token == "" {
		return fmt.Errorf("%w: the cURL command carries no cookies or bearer token", shared.ErrInvalidInput)
	}
	if curlHeaders.URL != "" && !sameOrigin(curlHeaders.URL, r.client.BaseURL()) {
		r.logger.Warn("cURL target differs from the configured backend", "curl", curlHeaders.URL, "base_url", r.client.BaseURL())
	}

	r.navigator.SetCurrent("/login")
	if err := r.open(); err != nil {
		return err
	}
	if err := r.client.SetCookies(cookies); err != nil {
		return err
	}
	if token != "" {
		if err := r.client.SetToken(token); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
	}

	state := r.session.Init(ctx)
	if !state.Authenticated() {
		return fmt.Errorf("%w: the imported session was rejected by the backend", shared.ErrAuthFailed)
	}
	r.session.Persist()

	r.logger.Debug("stored session", "cookies", len(cookies), "token", token != "")
	return r.writePlain("✓ Session imported, logged in as %s\n", state.User.Username)
}

func sameOrigin(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}
