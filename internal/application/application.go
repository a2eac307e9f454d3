package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "gitroster"

	// EnvPrefix prefixes environment overrides, e.g. GITROSTER_BASE_DIRECTORY
	EnvPrefix = "GITROSTER"

	// ConfigName is the configuration file name without extension
	ConfigName = "config"

	// ConfigType is the configuration file format
	ConfigType = "yaml"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the gitroster configuration directory path.
// Linux: ~/.config/gitroster (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\gitroster (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// ConfigFile returns the default path of config.yaml.
func ConfigFile() (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, ConfigName+"."+ConfigType), nil
}

// DefaultBaseDirectory is where repositories are cloned unless configured
// otherwise.
func DefaultBaseDirectory() string {
	return filepath.Join("~", "Documents", "Git")
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		baseDir, err = os.UserCacheDir()
	default:
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
