package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/playback"
	"github.com/desertthunder/badmusic/internal/repositories"
	"github.com/desertthunder/badmusic/internal/services"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	songs   *repositories.SongRepository
	suno    *repositories.SunoSongRepository
	likes   *repositories.LikedSongRepository
	library *catalog.Library
	backend services.Backend
	closers []func()
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Backend    services.Backend
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		backend:    opts.Backend,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, songsCommand, sunoCommand, likedCommand, genresCommand, playCommand, serveCommand, tuiCommand, exportCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config named by --config when it exists; defaults apply otherwise.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.LogLevel))
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// Close releases the database and remote backend.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
	return nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// open connects to the local catalog database and applies pending migrations.
func (r *Runner) open() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.closers = append(r.closers, func() { db.Close() })
	r.attach(db)
	return nil
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.songs = repositories.NewSongRepository(db)
	r.suno = repositories.NewSunoSongRepository(db)
	r.likes = repositories.NewLikedSongRepository(db)
	r.library = &catalog.Library{Songs: r.songs, Suno: r.suno, Likes: r.likes, UserID: r.config.User.ID}
}

// remote returns the backend selected by [database].driver.
func (r *Runner) remote(ctx context.Context) (services.Backend, error) {
	if r.backend != nil {
		return r.backend, nil
	}

	switch r.config.Database.Driver {
	case "", "sqlite":
		if err := r.open(); err != nil {
			return nil, err
		}
		r.backend = repositories.NewSQLiteBackend(r.db)
	case "postgres":
		pg, err := services.NewPostgresBackend(ctx, r.config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		r.closers = append(r.closers, pg.Close)
		r.backend = pg
	case "rest":
		r.backend = services.NewRESTBackend(r.config.Backend.URL, r.config.Backend.AnonKey, nil)
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", shared.ErrInvalidConfig, r.config.Database.Driver)
	}

	r.logger.Debug("using backend", "name", r.backend.Name())
	return r.backend, nil
}

// coordinator builds the play pipeline: store, counter and coordinator.
func (r *Runner) coordinator(ctx context.Context, opts ...playback.Option) (*playback.Coordinator, error) {
	backend, err := r.remote(ctx)
	if err != nil {
		return nil, err
	}

	pc := r.config.Playback
	counter := playback.NewPlayCounter(backend, pc.IncrementRate, shared.WithLogger(r.logger, "backend", backend.Name()))

	opts = append([]playback.Option{
		playback.WithDebounce(pc.Debounce()),
		playback.WithCooldown(pc.Cooldown()),
		playback.WithLogger(r.logger),
	}, opts...)
	return playback.NewCoordinator(player.NewStore(), counter, opts...), nil
}

func (r *Runner) urls() catalog.URLLoader {
	return catalog.NewURLLoader(r.config.Storage)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
