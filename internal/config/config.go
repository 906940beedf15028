// Package config resolves process-level settings (paths, interpreter, log level)
// from defaults, a .env file, DOCSCRIBE_* environment variables and CLI flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"docscribe/internal/model"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Setting keys, shared with the CLI flag bindings.
const (
	KeyConfigFile      = "config"
	KeyRootDir         = "root"
	KeyRepositoriesDir = "repositories_dir"
	KeyOutputsDir      = "outputs_dir"
	KeyTmpDir          = "tmp_dir"
	KeyPython          = "python"
	KeyLogLevel        = "log_level"
)

const (
	DefaultConfigFile = ".docscribe_config.json"
	DefaultRootDir    = "docscribe"
	DefaultPython     = "python3"
	DefaultLogLevel   = "warn"
	EnvPrefix         = "DOCSCRIBE"
)

// PackageManagers lists the supported Python package managers.
var PackageManagers = []string{"pip", "pip3", "pipenv"}

// Settings holds the resolved paths and preferences for one invocation.
type Settings struct {
	ConfigFile      string
	RootDir         string
	RepositoriesDir string
	OutputsDir      string
	TmpDir          string
	Python          string
	LogLevel        slog.Level

	repositoriesDirSet bool
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyConfigFile, DefaultConfigFile)
	v.SetDefault(KeyRootDir, DefaultRootDir)
	v.SetDefault(KeyRepositoriesDir, "")
	v.SetDefault(KeyOutputsDir, "")
	v.SetDefault(KeyTmpDir, "")
	v.SetDefault(KeyPython, DefaultPython)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden; a missing file is not an error.
func LoadDotEnv(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", model.ErrInvalidConfiguration, path, err)
	}
	for key, value := range env {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s from %s: %w", key, path, err)
		}
	}
	return nil
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	level, err := ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	root := v.GetString(KeyRootDir)
	s := &Settings{
		ConfigFile:      v.GetString(KeyConfigFile),
		RootDir:         root,
		RepositoriesDir: v.GetString(KeyRepositoriesDir),
		OutputsDir:      v.GetString(KeyOutputsDir),
		TmpDir:          v.GetString(KeyTmpDir),
		Python:          v.GetString(KeyPython),
		LogLevel:        level,
	}
	s.repositoriesDirSet = s.RepositoriesDir != ""
	if s.RepositoriesDir == "" {
		s.RepositoriesDir = filepath.Join(root, "repositories")
	}
	if s.OutputsDir == "" {
		s.OutputsDir = filepath.Join(root, "outputs")
	}
	if s.TmpDir == "" {
		s.TmpDir = filepath.Join(root, ".tmp")
	}
	if s.ConfigFile == "" {
		return nil, fmt.Errorf("%w: config file path cannot be empty", model.ErrInvalidConfiguration)
	}
	return s, nil
}

// ApplyDocument lets the configuration document's repositories_directory
// take effect unless the directory was set explicitly.
func (s *Settings) ApplyDocument(doc *model.ConfigDocument) {
	if s.repositoriesDirSet || doc == nil || doc.RepositoriesDirectory == "" {
		return
	}
	s.RepositoriesDir = doc.RepositoriesDirectory
}

// ParseLogLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w: unknown log level %q", model.ErrInvalidConfiguration, name)
	}
	return level, nil
}

// ValidPackageManager reports whether name is a supported package manager.
func ValidPackageManager(name string) bool {
	for _, pm := range PackageManagers {
		if pm == name {
			return true
		}
	}
	return false
}
