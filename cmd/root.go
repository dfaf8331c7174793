package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ddsconv/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "ddsconv",
	Short:        "ddsconv - batch convert images to and from DDS textures",
	Long:         "ddsconv converts directory trees of PNG, JPEG and TGA images to DDS textures and back, mirroring the source layout under a destination folder.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $DDSCONV_CONFIG)")
}

// interactive reports whether stdout is a terminal the TUI can draw on.
func interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// openLogger returns a JSON logger writing to a fresh file in cfg.LogDir.
// A log directory that cannot be created degrades to no file logging.
func openLogger(cfg config.Config) (*slog.Logger, func()) {
	f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		return config.NewLogger(io.Discard, cfg.LogLevel), func() {}
	}
	return config.NewLogger(f, cfg.LogLevel), func() { _ = f.Close() }
}
