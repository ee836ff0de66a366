package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/studyx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	var resp []byte
	if err := r.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return err
	}
	return r.writeRaw(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if err := shared.ValidateJSON([]byte(data)); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	var resp []byte
	if err := r.client.Do(ctx, http.MethodPost, path, []byte(data), &resp); err != nil {
		return err
	}
	return r.writeRaw(resp, true)
}

// writeRaw prints a response body. Empty bodies print nothing.
func (r *Runner) writeRaw(raw []byte, pretty bool) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		r.output.Write(raw)
		r.output.Write([]byte("\n"))
		return nil
	}
	return r.writeJSON(json.RawMessage(raw), pretty)
}
