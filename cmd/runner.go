package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dayeggpi/spotiup/internal/backup"
	"github.com/dayeggpi/spotiup/internal/repositories"
	"github.com/dayeggpi/spotiup/internal/services"
	"github.com/dayeggpi/spotiup/internal/shared"
	"github.com/dayeggpi/spotiup/internal/store"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Logger     *log.Logger
	Output     io.Writer
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, backupCommand, refreshCommand, libraryCommand, foldersCommand, exportCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireCatalog returns the configured catalog adapter or fails with a hint
// toward setup when credentials were never configured.
func (r *Runner) requireCatalog() (services.Catalog, error) {
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: run 'spotiup setup' and add your Spotify credentials to config.toml", shared.ErrMissingCredentials)
	}
	return r.catalog, nil
}

// openStore opens the snapshot store configured in [shared.StorageConfig].
func (r *Runner) openStore() (*store.Store, error) {
	st, err := store.NewStore(&r.config.Storage, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return st, nil
}

// openEngine wires a backup engine over the catalog, the snapshot store and
// the genre cache. The returned cleanup closes the cache database and must
// be called when the command finishes.
func (r *Runner) openEngine() (*backup.Engine, func(), error) {
	catalog, err := r.requireCatalog()
	if err != nil {
		return nil, nil, err
	}

	st, err := r.openStore()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}

	// The genre cache degrades to memory-only when the database is
	// unavailable; enrichment still works, it just refetches next run.
	var repo *repositories.GenreRepository
	if db, err := shared.NewDatabase(r.config.Database.Path); err != nil {
		r.logger.Warn("genre cache database unavailable", "error", err)
	} else if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("genre cache migrations failed", "error", err)
		db.Close()
	} else {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		repo = repositories.NewGenreRepository(db)
		cleanup = func() { db.Close() }
	}

	genres := repositories.NewGenreCache(repo, catalog, r.logger)
	pageDelay := time.Duration(r.config.Sync.PageDelayMS) * time.Millisecond

	return backup.NewEngine(catalog, st, genres, pageDelay, r.logger), cleanup, nil
}

// saveTokens persists a fresh OAuth2 token into the loaded configuration.
//
// An empty configPath updates the in-memory config only.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
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
