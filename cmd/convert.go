package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ddsconv/internal/codec"
	"ddsconv/internal/convert"
	"ddsconv/internal/format"
	"ddsconv/internal/scan"
	"ddsconv/internal/tui"
)

var (
	convertOutputDir   string
	convertTarget      string
	convertDDSFormat   string
	convertSequential  bool
	convertChunkSize   int
	convertWorkers     int
	convertPlain       bool
	convertAutoOrient  bool
	convertJPEGQuality int
	convertLogLevel    string
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <path>",
	Short: "Convert every image under a folder to one format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := format.Parse(convertTarget)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}

		source := args[0]
		info, err := os.Stat(source)
		if err != nil {
			return err
		}
		sourceRoot := source
		if !info.IsDir() {
			sourceRoot = filepath.Dir(source)
		}
		destRoot := convertOutputDir
		if destRoot == "" {
			destRoot = sourceRoot
		}

		var exclude string
		if filepath.Clean(destRoot) != filepath.Clean(sourceRoot) {
			exclude = destRoot
		}
		files, err := scan.Files(source, scan.Options{Exclude: exclude})
		if err != nil {
			return err
		}

		logger, closeLog := openLogger(cfg)
		defer closeLog()

		plain := convertPlain || !interactive()
		progress := &convert.Progress{}
		sinks := convert.MultiSink{convert.SlogSink{Logger: logger}, progress}
		if plain {
			sinks = append(sinks, convert.SlogSink{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))})
		}

		strategy := convert.Strategy{Mode: convert.Parallel, ChunkSize: cfg.ChunkSize, Workers: cfg.Workers}
		if convertSequential {
			strategy = convert.Strategy{Mode: convert.Sequential}
		}

		engine := convert.New(codec.New(codec.Options{
			JPEGQuality: cfg.JPEGQuality,
			AutoOrient:  cfg.AutoOrient,
			Logger:      logger,
		}), convert.WithSink(sinks))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		future := engine.Start(ctx, convert.Request{
			Files:      files,
			SourceRoot: sourceRoot,
			DestRoot:   destRoot,
			Target:     target,
			DDSFormat:  cfg.DDS(),
			Strategy:   strategy,
		})

		if plain {
			fmt.Fprintf(os.Stdout, "Converting %d file(s) to %s...\n", len(files), target)
		} else {
			title := fmt.Sprintf("ddsconv → %s", target)
			if _, err := tea.NewProgram(tui.NewModel(title, future, progress, cancel)).Run(); err != nil {
				logger.Warn("tui stopped", "error", err)
			}
		}

		report, err := future.Wait(context.Background())
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.ReportRows(report)))
		if len(report.Failed) > 0 {
			fmt.Fprintln(os.Stdout, tui.RenderFailures(report.Failed))
		}
		if report.Err != nil {
			return report.Err
		}
		if !report.OK() {
			return fmt.Errorf("%d of %d file(s) failed", len(report.Failed), report.Processed())
		}

		outPath := destRoot
		if abs, absErr := filepath.Abs(destRoot); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(os.Stdout, "Converted files written to: %s\n", outPath)
		return nil
	},
}

func init() {
	flags := convertCmd.Flags()
	flags.StringVarP(&convertOutputDir, "output", "o", "", "destination folder (defaults to the source folder)")
	flags.StringVarP(&convertTarget, "format", "f", "dds", "target format: "+strings.Join(format.Names(), ", "))
	flags.StringVar(&convertDDSFormat, "dds-format", "", "DDS sub-format when converting to dds (see 'ddsconv formats')")
	flags.BoolVar(&convertSequential, "sequential", false, "convert one file at a time")
	flags.IntVar(&convertChunkSize, "chunk-size", convert.DefaultChunkSize, "files per work unit in parallel mode")
	flags.IntVar(&convertWorkers, "workers", 0, "parallel workers (0 = number of CPUs)")
	flags.BoolVar(&convertPlain, "plain", false, "disable the interactive display")
	flags.BoolVar(&convertAutoOrient, "auto-orient", false, "apply JPEG EXIF orientation when decoding")
	flags.IntVar(&convertJPEGQuality, "jpeg-quality", codec.DefaultJPEGQuality, "JPEG/JPG output quality (1-100)")
	flags.StringVar(&convertLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(convertCmd)
}
