package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/studyx/internal/formatter"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin logs in with email and password and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, err := r.stringOrPrompt(cmd, "email", "Email: ")
	if err != nil {
		return err
	}
	password, err := r.stringOrPrompt(cmd, "password", "Password: ")
	if err != nil {
		return err
	}

	user, err := r.session.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	r.logger.Info("logged in", "user", user.Username)
	return r.writePlain("✓ Logged in as %s\n", user.Username)
}

// AuthLogout logs out. Local state is cleared even when the server cannot be reached.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout(ctx)
	return r.writePlain("✓ Logged out\n")
}

// AuthRegister creates an account. It does not log in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	password, err := r.stringOrPrompt(cmd, "password", "Password: ")
	if err != nil {
		return err
	}

	req := models.RegisterRequest{
		Username:     cmd.String("username"),
		Email:        cmd.String("email"),
		Password:     password,
		Age:          int(cmd.Int("age")),
		StudyFields:  cmd.StringSlice("field"),
		Bio:          cmd.String("bio"),
		ProfileImage: cmd.String("image"),
	}
	if req.ProfileImage != "" && !req.HasProfileImage() {
		return fmt.Errorf("%w: cannot read profile image %s", shared.ErrInvalidArgument, req.ProfileImage)
	}

	if err := r.session.Register(ctx, req); err != nil {
		return err
	}
	return r.writePlain("✓ Registered %s. Run 'studyx auth login' to sign in.\n", req.Username)
}

// AuthStatus checks the stored session against the server.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	state := r.session.Init(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"status": state.Status.String(), "user": state.User}, true)
	}
	if !state.Authenticated() {
		return r.writePlain("✗ Not logged in\n")
	}
	r.writePlain("✓ Logged in\n")
	return r.writePlain("%s", formatter.UserText(state.User))
}

// AuthRefresh reloads the profile.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	user, err := r.session.RefreshUser(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Profile refreshed for %s\n", user.Username)
}

// ProfileShow prints the profile.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	return r.writePlain("%s", formatter.UserText(user))
}

// ProfileUpdate sends only the flags that were set.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	var patch models.UserPatch
	changed := false
	if cmd.IsSet("username") {
		v := cmd.String("username")
		patch.Username, changed = &v, true
	}
	if cmd.IsSet("bio") {
		v := cmd.String("bio")
		patch.Bio, changed = &v, true
	}
	if cmd.IsSet("field") {
		patch.StudyFields, changed = cmd.StringSlice("field"), true
	}
	if cmd.IsSet("image-url") {
		v := cmd.String("image-url")
		patch.ProfileImageURL, changed = &v, true
	}
	if cmd.IsSet("age") {
		v := int(cmd.Int("age"))
		patch.Age, changed = &v, true
	}
	if cmd.IsSet("notifications") {
		v := cmd.Bool("notifications")
		patch.NotificationEnabled, changed = &v, true
	}
	if !changed {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	user, err := r.session.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	r.writePlain("✓ Profile updated\n")
	return r.writePlain("%s", formatter.UserText(user))
}

// ProfileEmail changes the account email.
func (r *Runner) ProfileEmail(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}
	user, err := r.session.ChangeEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Email changed to %s\n", user.Email)
}

// ProfilePassword changes the account password.
func (r *Runner) ProfilePassword(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}
	current, err := r.stringOrPrompt(cmd, "current", "Current password: ")
	if err != nil {
		return err
	}
	next, err := r.stringOrPrompt(cmd, "new", "New password: ")
	if err != nil {
		return err
	}
	if err := r.session.ChangePassword(ctx, models.PasswordChange{CurrentPassword: current, NewPassword: next}); err != nil {
		return err
	}
	return r.writePlain("✓ Password changed\n")
}

// ProfileDelete deletes the account after confirmation and forgets the local session.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := r.confirmer(cmd).Confirm(ctx, fmt.Sprintf("Delete the account %s? This cannot be undone.", user.Username))
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotConfirmed
	}
	password, err := r.stringOrPrompt(cmd, "password", "Password: ")
	if err != nil {
		return err
	}
	if err := r.session.DeleteAccount(ctx, password); err != nil {
		return err
	}
	return r.writePlain("✓ Account deleted\n")
}
