package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/venharis/dais/internal/ports"
)

const (
	// EnvPrefix is the prefix of all configuration environment variables.
	EnvPrefix = "DAIS_"

	// EnvConfigFile names the environment variable that points at the
	// optional YAML configuration file.
	EnvConfigFile = "DAIS_CONFIG"
)

// Verify interface compliance at compile time.
var _ ports.ConfigLoader = (*Loader)(nil)

// Loader populates configuration structs by layering an optional YAML
// file and environment variables on top of whatever values the struct
// already carries. Pass a struct pre-filled with Default() to get the
// standard precedence: defaults, then file, then environment.
type Loader struct {
	// path overrides the config file location. Empty means consult the
	// DAIS_CONFIG environment variable.
	path string
}

// NewLoader creates a Loader. An empty path defers file discovery to the
// DAIS_CONFIG environment variable.
func NewLoader(path string) *Loader { return &Loader{path: path} }

func (l *Loader) configPath() string {
	if l.path != "" {
		return l.path
	}
	return os.Getenv(EnvConfigFile)
}

// Load populates config, which must be a pointer to a struct with koanf
// tags. Values already present on the struct survive unless the file or
// environment overrides them.
func (l *Loader) Load(ctx context.Context, config any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	k := koanf.New(".")

	if path := l.configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Environment variables: DAIS_ADDR, DAIS_LOG_LEVEL,
	// DAIS_STORAGE__BACKEND, ... Doubled underscores nest; single
	// underscores are part of the key.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyToPath), nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Watch re-loads config whenever the underlying file changes and passes
// the re-populated struct to callback. The callback runs on the watcher
// goroutine, so callers needing isolation should copy inside it. Without
// a config file there is nothing to watch and the returned stop function
// is a no-op.
func (l *Loader) Watch(ctx context.Context, config any, callback func(any)) (stop func(), err error) {
	path := l.configPath()
	if path == "" {
		return func() {}, nil
	}

	provider := file.Provider(path)
	if err := provider.Watch(func(event any, watchErr error) {
		if watchErr != nil {
			return
		}
		if loadErr := l.Load(ctx, config); loadErr != nil {
			return
		}
		callback(config)
	}); err != nil {
		return nil, fmt.Errorf("watch config file %s: %w", path, err)
	}
	return func() { _ = provider.Unwatch() }, nil
}

// envKeyToPath maps DAIS_STORAGE__BACKEND to storage.backend and
// DAIS_LOG_LEVEL to log_level.
func envKeyToPath(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}
