package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Duration is a time.Duration written as "1s", "30m" in the config file
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return goerr.Wrap(ErrInvalidDuration, err.Error(), goerr.V(ValueKey, string(b)))
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// AppConfig represents the optional TOML application configuration
type AppConfig struct {
	Builder    BuilderSection    `toml:"builder"`
	Fill       FillSection       `toml:"fill"`
	Generation GenerationSection `toml:"generation"`
	Defaults   DefaultsSection   `toml:"defaults"`

	path string
}

type BuilderSection struct {
	AutosaveDelay Duration `toml:"autosave_delay"`
	IdleTimeout   Duration `toml:"idle_timeout"`
}

type FillSection struct {
	SessionTTL Duration `toml:"session_ttl"`
}

// GenerationSection overrides the sampling parameters of the Gemini backend.
// Zero values keep the defaults.
type GenerationSection struct {
	Model           string  `toml:"model"`
	Temperature     float32 `toml:"temperature"`
	TopP            float32 `toml:"top_p"`
	TopK            float32 `toml:"top_k"`
	MaxOutputTokens int32   `toml:"max_output_tokens"`
}

type DefaultsSection struct {
	ConfirmationMessage string `toml:"confirmation_message"`
}

// Flags returns CLI flags for the configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("FORMFLOW_CONFIG"),
			Destination: &a.path,
		},
	}
}

// LogValue implements slog.LogValuer
func (a AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", a.path),
		slog.Duration("autosave_delay", time.Duration(a.Builder.AutosaveDelay)),
		slog.Duration("idle_timeout", time.Duration(a.Builder.IdleTimeout)),
		slog.Duration("session_ttl", time.Duration(a.Fill.SessionTTL)),
		slog.String("model", a.Generation.Model),
	)
}

// Validate checks value ranges of every section
func (a *AppConfig) Validate() error {
	if a.Builder.AutosaveDelay < 0 {
		return goerr.Wrap(ErrInvalidConfig, "autosave_delay must not be negative",
			goerr.V(SectionKey, "builder"), goerr.V(ValueKey, a.Builder.AutosaveDelay))
	}
	if a.Builder.IdleTimeout < 0 {
		return goerr.Wrap(ErrInvalidConfig, "idle_timeout must not be negative",
			goerr.V(SectionKey, "builder"), goerr.V(ValueKey, a.Builder.IdleTimeout))
	}
	if a.Fill.SessionTTL < 0 {
		return goerr.Wrap(ErrInvalidConfig, "session_ttl must not be negative",
			goerr.V(SectionKey, "fill"), goerr.V(ValueKey, a.Fill.SessionTTL))
	}

	g := a.Generation
	if g.Temperature < 0 || g.Temperature > 2 {
		return goerr.Wrap(ErrInvalidConfig, "temperature must be between 0 and 2",
			goerr.V(SectionKey, "generation"), goerr.V(ValueKey, g.Temperature))
	}
	if g.TopP < 0 || g.TopP > 1 {
		return goerr.Wrap(ErrInvalidConfig, "top_p must be between 0 and 1",
			goerr.V(SectionKey, "generation"), goerr.V(ValueKey, g.TopP))
	}
	if g.TopK < 0 {
		return goerr.Wrap(ErrInvalidConfig, "top_k must not be negative",
			goerr.V(SectionKey, "generation"), goerr.V(ValueKey, g.TopK))
	}
	if g.MaxOutputTokens < 0 {
		return goerr.Wrap(ErrInvalidConfig, "max_output_tokens must not be negative",
			goerr.V(SectionKey, "generation"), goerr.V(ValueKey, g.MaxOutputTokens))
	}
	return nil
}

// Load reads the file given by --config. Without a path it returns the
// zero configuration.
func (a *AppConfig) Load() error {
	if a.path == "" {
		return nil
	}
	cfg, err := LoadAppConfiguration(a.path)
	if err != nil {
		return err
	}
	path := a.path
	*a = *cfg
	a.path = path
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config: "+err.Error(), goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// UseCaseOptions converts the file settings into use case options
func (a *AppConfig) UseCaseOptions() []usecase.Option {
	var opts []usecase.Option
	if a.Builder.AutosaveDelay > 0 {
		opts = append(opts, usecase.WithAutosaveDelay(time.Duration(a.Builder.AutosaveDelay)))
	}
	if a.Builder.IdleTimeout > 0 {
		opts = append(opts, usecase.WithBuilderIdleTTL(time.Duration(a.Builder.IdleTimeout)))
	}
	if a.Fill.SessionTTL > 0 {
		opts = append(opts, usecase.WithFillSessionTTL(time.Duration(a.Fill.SessionTTL)))
	}
	if a.Defaults.ConfirmationMessage != "" {
		opts = append(opts, usecase.WithConfirmationMessage(a.Defaults.ConfirmationMessage))
	}
	return opts
}

// GeminiParams merges the [generation] section into the default parameters
func (a *AppConfig) GeminiParams() formgen.GeminiParams {
	p := formgen.DefaultGeminiParams()
	g := a.Generation
	if g.Model != "" {
		p.Model = g.Model
	}
	if g.Temperature > 0 {
		p.Temperature = g.Temperature
	}
	if g.TopP > 0 {
		p.TopP = g.TopP
	}
	if g.TopK > 0 {
		p.TopK = g.TopK
	}
	if g.MaxOutputTokens > 0 {
		p.MaxOutputTokens = g.MaxOutputTokens
	}
	return p
}
