package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/repositories"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/session"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"
)

const reloginHint = "Your session has expired. Run 'studyx auth login' to sign in again.\n"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
	navigator  *services.RouteNavigator
	client     *services.APIClient
	db         *sqlx.DB
	ownsDB     bool
	sessions   *repositories.SessionRepository
	rooms      *repositories.CurrentRoomRepository
	session    *session.Holder
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Transport  http.RoundTripper
	DB         *sqlx.DB // opened lazily from Config when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		db:         opts.DB,
	}
	r.navigator = services.NewRouteNavigator("/", r.onRedirect)
	r.client = services.NewAPIClient(services.ClientOptions{
		BaseURL:      opts.Config.API.BaseURL,
		UserAgent:    opts.Config.API.UserAgent,
		PublicRoutes: opts.Config.API.PublicRoutes,
		Transport:    opts.Transport,
		Navigator:    r.navigator,
		Logger:       opts.Logger,
	})
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, groupsCommand, openCommand, roomsCommand, checklistCommand,
		chatCommand, roomCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// at positions the navigator on route and opens local state before a command runs.
func (r *Runner) at(route string) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		r.navigator.SetCurrent(route)
		return ctx, r.open()
	}
}

// open connects the database, builds the repositories and restores the stored session. It runs once.
func (r *Runner) open() error {
	if r.session != nil {
		return nil
	}
	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database (run 'studyx setup database'?): %w", err)
		}
		r.db = db
		r.ownsDB = true
	}

	r.sessions = repositories.NewSessionRepository(r.db)
	r.rooms = repositories.NewCurrentRoomRepository(r.db)
	r.session = session.NewFromClient(r.client, r.sessions, r.rooms, r.logger)
	if err := r.session.Restore(); err != nil {
		r.logger.Warn("could not restore session", "error", err)
	}
	return nil
}

// Close waits briefly for in-flight beacons and releases the database.
func (r *Runner) Close() error {
	if !r.client.WaitBeacons(2 * time.Second) {
		r.logger.Warn("exit notifications still in flight")
	}
	if r.ownsDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

// onRedirect runs when the client sends the user to the login screen after a 401.
func (r *Runner) onRedirect(route string) {
	r.logger.Debug("redirected", "route", route)
	r.writePlain(reloginHint)
	r.client.ClearSession()
	if r.sessions != nil {
		if err := r.sessions.DeleteByBaseURL(r.client.BaseURL()); err != nil {
			r.logger.Warn("failed to clear stored session", "error", err)
		}
	}
}

// requireUser refreshes the profile, failing when nobody is logged in.
func (r *Runner) requireUser(ctx context.Context) (*models.User, error) {
	user, err := r.session.RefreshUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: run 'studyx auth login' first", shared.ErrNotAuthenticated)
	}
	return user, nil
}

func (r *Runner) memberID() models.ID {
	if u := r.session.User(); u != nil {
		return u.ID
	}
	return ""
}

// roomController builds the lifecycle controller for kind. Group rooms need the member id, so the profile is
// loaded first.
func (r *Runner) roomController(ctx context.Context, cmd *cli.Command, kind models.RoomKind) (*tasks.RoomController, error) {
	if kind == models.RoomKindGroup {
		if _, err := r.requireUser(ctx); err != nil {
			return nil, err
		}
	}
	return tasks.NewRoomController(tasks.RoomControllerOpts{
		Kind:      kind,
		API:       r.client,
		Store:     r.rooms,
		Confirmer: r.confirmer(cmd),
		MemberID:  r.memberID,
		Logger:    r.logger,
	}), nil
}

func (r *Runner) confirmer(cmd *cli.Command) tasks.Confirmer {
	if cmd.Bool("yes") {
		return autoConfirm{}
	}
	return &promptConfirmer{in: r.input, out: r.output}
}

// SetLogger replaces the runner's and the client's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.client.SetLogger(l)
}

// readLine prompts on the output and reads one trimmed line from the input.
func (r *Runner) readLine(prompt string) (string, error) {
	r.writePlain("%s", prompt)
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: no input for %q", shared.ErrMissingArgument, strings.TrimSpace(prompt))
	}
	return strings.TrimSpace(line), nil
}

// stringOrPrompt returns the flag value, asking for it when empty.
func (r *Runner) stringOrPrompt(cmd *cli.Command, flag, prompt string) (string, error) {
	if v := cmd.String(flag); v != "" {
		return v, nil
	}
	return r.readLine(prompt)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// autoConfirm answers yes, for --yes.
type autoConfirm struct{}

func (autoConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

// promptConfirmer asks on the terminal. Anything but y/yes is a no.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
