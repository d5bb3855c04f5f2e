package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/trail"
)

// Settings are per-user process options, separate from scenarios.
type Settings struct {
	DataDir       string  `mapstructure:"data_dir"`
	LogLevel      string  `mapstructure:"log_level"`
	LogFile       string  `mapstructure:"log_file"`
	LogPretty     bool    `mapstructure:"log_pretty"`
	FPS           int     `mapstructure:"fps"`
	StepsPerFrame int     `mapstructure:"steps_per_frame"`
	TrailCapacity int     `mapstructure:"trail_capacity"`
	Zoom          float64 `mapstructure:"zoom"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "runs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "threebody.log")
	v.SetDefault("log_pretty", false)
	v.SetDefault("fps", 60)
	v.SetDefault("steps_per_frame", 10)
	v.SetDefault("trail_capacity", trail.DefaultCapacity)
	v.SetDefault("zoom", 1.0)
}

// LoadSettings reads settings from path, or from threebody.yaml in the
// working directory when path is empty and the file exists. Environment
// variables prefixed THREEBODY_ override both.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("THREEBODY")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	} else {
		v.SetConfigName("threebody")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading settings file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if s.FPS <= 0 || s.FPS > 240 {
		return fmt.Errorf("fps must be in 1..240, got %d: %w", s.FPS, dynamo.ErrInvalidParameter)
	}
	if s.StepsPerFrame <= 0 {
		return fmt.Errorf("steps_per_frame must be positive, got %d: %w", s.StepsPerFrame, dynamo.ErrInvalidParameter)
	}
	if s.TrailCapacity <= 0 {
		return fmt.Errorf("trail_capacity must be positive, got %d: %w", s.TrailCapacity, dynamo.ErrInvalidParameter)
	}
	if s.Zoom <= 0 {
		return fmt.Errorf("zoom must be positive, got %g: %w", s.Zoom, dynamo.ErrInvalidParameter)
	}
	return nil
}
