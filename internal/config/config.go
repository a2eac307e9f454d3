// Package config loads gitroster settings from config.yaml, GITROSTER_*
// environment variables and built-in defaults, in increasing order of
// precedence: defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/inovacc/gitroster/internal/application"
	"github.com/inovacc/gitroster/internal/logging"
	"github.com/inovacc/gitroster/internal/store"
	"github.com/spf13/viper"
)

const (
	KeyBaseDirectory = "base_directory"
	KeyStoreBackend  = "store.backend"
	KeyStorePath     = "store.path"
	KeyGitBackend    = "git.backend"
	KeyGitPath       = "git.path"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

const (
	GitBackendGoGit = "gogit"
	GitBackendExec  = "exec"
)

// Config is the resolved configuration.
type Config struct {
	BaseDirectory string      `mapstructure:"base_directory" yaml:"base_directory"`
	Store         StoreConfig `mapstructure:"store" yaml:"store"`
	Git           GitConfig   `mapstructure:"git" yaml:"git"`
	Log           LogConfig   `mapstructure:"log" yaml:"log"`

	// File is the configuration file that was read, empty if none was.
	File string `mapstructure:"-" yaml:"-"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path of the registry file; derived from the config directory when empty.
	Path string `mapstructure:"path" yaml:"path"`
}

type GitConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path of the git executable used by the exec backend.
	Path string `mapstructure:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Loader reads configuration with viper.
type Loader struct {
	// File is an explicit configuration file. When set, it must exist.
	File string
	// SearchPaths are searched for config.yaml when File is empty.
	SearchPaths []string
	// Directory is where the registry file lives when store.path is unset.
	Directory string
}

// NewLoader returns a loader searching the application directory.
func NewLoader(file string) (*Loader, error) {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return nil, err
	}

	return &Loader{File: file, SearchPaths: []string{dir}, Directory: dir}, nil
}

// Defaults returns the built-in value of every key.
func Defaults() map[string]any {
	return map[string]any{
		KeyBaseDirectory: application.DefaultBaseDirectory(),
		KeyStoreBackend:  store.BackendFile,
		KeyStorePath:     "",
		KeyGitBackend:    GitBackendGoGit,
		KeyGitPath:       "",
		KeyLogLevel:      string(logging.LevelWarn),
		KeyLogFormat:     string(logging.FormatConsole),
	}
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (Config, error) {
	v := l.viper()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg, viper.DecodeHook(expandHomeHook())); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.File = v.ConfigFileUsed()

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(l.Directory, store.DefaultFileName(cfg.Store.Backend))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDirectory) == "" {
		return fmt.Errorf("invalid configuration: %s is empty", KeyBaseDirectory)
	}

	switch c.Store.Backend {
	case store.BackendFile, store.BackendBolt:
	default:
		return fmt.Errorf("invalid configuration: unknown %s %q", KeyStoreBackend, c.Store.Backend)
	}

	switch c.Git.Backend {
	case GitBackendGoGit, GitBackendExec:
	default:
		return fmt.Errorf("invalid configuration: unknown %s %q", KeyGitBackend, c.Git.Backend)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// SaveBaseDirectory writes base_directory to the configuration file and
// keeps every other key already in it. It returns the file written.
func (l *Loader) SaveBaseDirectory(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("invalid configuration: %s is empty", KeyBaseDirectory)
	}

	file := l.File
	if file == "" {
		if len(l.SearchPaths) == 0 {
			return "", errors.New("no configuration directory")
		}

		file = filepath.Join(l.SearchPaths[0], application.ConfigName+"."+application.ConfigType)
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType(application.ConfigType)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	v.Set(KeyBaseDirectory, dir)

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return "", fmt.Errorf("failed to create configuration directory: %w", err)
	}

	if err := v.WriteConfigAs(file); err != nil {
		return "", fmt.Errorf("failed to write configuration: %w", err)
	}

	return file, nil
}

func (l *Loader) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(application.ConfigName)
	v.SetConfigType(application.ConfigType)

	for _, p := range l.SearchPaths {
		v.AddConfigPath(p)
	}

	if l.File != "" {
		v.SetConfigFile(l.File)
	}

	v.SetEnvPrefix(application.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// expandHomeHook replaces a leading ~ in string values with the user's
// home directory.
func expandHomeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}

		return ExpandHome(reflect.ValueOf(data).String())
	}
}

// ExpandHome expands "~" and "~/..." against the user's home directory.
// Other values are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
