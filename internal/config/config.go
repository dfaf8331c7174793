package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ddsconv/internal/dds"
)

const envPrefix = "DDSCONV_"

type Config struct {
	LogDir      string `yaml:"log_dir"`
	LogLevel    string `yaml:"log_level"`
	LogMaxFiles int    `yaml:"log_max_files"`
	ChunkSize   int    `yaml:"chunk_size"`
	// Workers of 0 uses every CPU.
	Workers     int    `yaml:"workers"`
	DDSFormat   string `yaml:"dds_format"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	AutoOrient  bool   `yaml:"auto_orient"`
}

func Default() Config {
	return Config{
		LogDir:      defaultLogDir(),
		LogLevel:    "info",
		LogMaxFiles: 10,
		ChunkSize:   5,
		Workers:     0,
		DDSFormat:   dds.BC1RgbaUnorm.String(),
		JPEGQuality: 90,
		AutoOrient:  false,
	}
}

func defaultLogDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ddsconv", "logs")
	}
	return filepath.Join(os.TempDir(), "ddsconv", "logs")
}

// Load layers defaults, the YAML file at path (or $DDSCONV_CONFIG), a .env
// file in the working directory and DDSCONV_* variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}

// Normalize folds case-insensitive settings to their canonical spelling.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func applyEnv(cfg *Config) error {
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DDSFormat = getEnv("DDS_FORMAT", cfg.DDSFormat)

	ints := []struct {
		key string
		dst *int
	}{
		{"LOG_MAX_FILES", &cfg.LogMaxFiles},
		{"CHUNK_SIZE", &cfg.ChunkSize},
		{"WORKERS", &cfg.Workers},
		{"JPEG_QUALITY", &cfg.JPEGQuality},
	}
	for _, v := range ints {
		raw := getEnv(v.key, "")
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, v.key, err)
		}
		*v.dst = n
	}

	if raw := getEnv("AUTO_ORIENT", ""); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%sAUTO_ORIENT: %w", envPrefix, err)
		}
		cfg.AutoOrient = b
	}
	return nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogMaxFiles, validation.Required, validation.Min(1)),
		validation.Field(&c.ChunkSize, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.DDSFormat, validation.By(func(value interface{}) error {
			_, err := dds.ParseFormat(value.(string))
			return err
		})),
		validation.Field(&c.JPEGQuality, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// DDS returns the parsed DDS sub-format.
func (c Config) DDS() dds.Format {
	f, err := dds.ParseFormat(c.DDSFormat)
	if err != nil {
		return dds.BC1RgbaUnorm
	}
	return f
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(envPrefix + key)); value != "" {
		return value
	}
	return defaultValue
}
