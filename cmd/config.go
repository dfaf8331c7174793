package cmd

import (
	"github.com/spf13/cobra"

	"ddsconv/internal/config"
)

// loadConfig applies flags the user set explicitly on top of the file and
// environment layers.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = convertChunkSize
	}
	if flags.Changed("workers") {
		cfg.Workers = convertWorkers
	}
	if flags.Changed("dds-format") {
		cfg.DDSFormat = convertDDSFormat
	}
	if flags.Changed("jpeg-quality") {
		cfg.JPEGQuality = convertJPEGQuality
	}
	if flags.Changed("auto-orient") {
		cfg.AutoOrient = convertAutoOrient
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = convertLogLevel
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}
