// Package config loads coursekit settings from an optional YAML file and
// COURSEKIT_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/wudi/coursekit/ingest"
)

// EnvPrefix prefixes every environment override, e.g.
// COURSEKIT_INGEST_CHUNK_SIZE or COURSEKIT_LOG_LEVEL.
const EnvPrefix = "COURSEKIT"

type Config struct {
	Ingest ingest.Config `mapstructure:"ingest"`
	Log    LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "console" or "json".
	Format string `mapstructure:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Ingest: ingest.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path (skipped when empty) on top of the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	in := d.Ingest
	for key, val := range map[string]any{
		"chunk_size":           in.ChunkSize,
		"chunk_overlap":        in.ChunkOverlap,
		"use_ocr":              in.UseOCR,
		"max_images_per_page":  in.MaxImagesPerPage,
		"min_text_len_for_ocr": in.MinTextLenForOCR,
		"ocr_max_dim":          in.OCRMaxDim,
		"ocr_min_dim":          in.OCRMinDim,
		"ocr_psm":              in.OCRPSM,
		"ocr_log_text":         in.OCRLogText,
		"ocr_dpi":              in.OCRDPI,
		"ocr_lang":             in.OCRLang,
		"ocr_engine_mode":      in.OCREngineMode,
		"ocr_workers":          in.OCRWorkers,
		"ocr_backend":          in.OCRBackend,
	} {
		v.SetDefault("ingest."+key, val)
	}
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
