package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/inovacc/gitroster/internal/application"
	"github.com/inovacc/gitroster/internal/config"
	"github.com/inovacc/gitroster/internal/engine"
	"github.com/inovacc/gitroster/internal/git"
	"github.com/inovacc/gitroster/internal/logging"
	"github.com/inovacc/gitroster/internal/registry"
	"github.com/inovacc/gitroster/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Run executes the command line in args and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args[1:])
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		return 1
	}

	return 0
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   application.AppName,
		Short: "Keep a list of git repositories and sync them",
		Long: `gitroster keeps an ordered list of remote git repositories, where each one
is cloned, which branch it is on and what its last commit was. Repositories
are cloned under a base directory and pulled on demand.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Configuration file (default is config.yaml in the gitroster config directory)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console, structured")

	rootCmd.AddCommand(
		newAddCmd(a),
		newCloneCmd(a),
		newPullCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newOpenCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

// app holds what the commands of one invocation share.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configFile string
	logLevel   string
	logFormat  string

	loader *config.Loader
	cfg    *config.Config
	logger *zap.Logger
	reg    *registry.Registry
}

func (a *app) config() (config.Config, error) {
	if a.cfg != nil {
		return *a.cfg, nil
	}

	loader, err := config.NewLoader(a.configFile)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	a.loader = loader
	a.cfg = &cfg

	return cfg, nil
}

func (a *app) log() (*zap.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}

	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewWithWriter(cfg.Log.Level, cfg.Log.Format, a.stderr)
	if err != nil {
		return nil, err
	}

	a.logger = logger

	return logger, nil
}

// registry opens the store and loads the persisted list.
func (a *app) registry() (*registry.Registry, error) {
	if a.reg != nil {
		return a.reg, nil
	}

	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	logger, err := a.log()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(registry.Options{
		BaseDirectory: cfg.BaseDirectory,
		Store:         st,
		Backend:       newBackend(cfg),
		Identity:      engine.DefaultIdentity,
		Logger:        logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	if err := reg.Load(); err != nil {
		_ = reg.Close()
		return nil, err
	}

	logger.Debug("registry opened",
		zap.String("store", cfg.Store.Path),
		zap.String("backend", cfg.Store.Backend),
		zap.Int("repositories", reg.Len()),
	)

	a.reg = reg

	return reg, nil
}

func (a *app) close() {
	if a.reg != nil {
		if err := a.reg.Close(); err != nil {
			_, _ = fmt.Fprintf(a.stderr, "Warning: %v\n", err)
		}
	}

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// interactive reports whether terminal views can be shown.
func (a *app) interactive() bool {
	f, ok := a.stdout.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

func newBackend(cfg config.Config) engine.Backend {
	if cfg.Git.Backend == config.GitBackendExec {
		c := git.NewClient()
		if cfg.Git.Path != "" {
			c.GitPath = cfg.Git.Path
		}

		return c
	}

	return git.NewGoGit()
}

var errNoSelection = errors.New("no repository selected")
