package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ddsconv/internal/convert"
	"ddsconv/internal/format"
	"ddsconv/internal/scan"
	"ddsconv/internal/tui"
)

var scanTarget string

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "List the files a conversion would pick up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		files, err := scan.Files(root, scan.Options{})
		if err != nil {
			return err
		}

		var eligible map[string]bool
		if scanTarget != "" {
			target, err := format.Parse(scanTarget)
			if err != nil {
				return err
			}
			eligible = make(map[string]bool)
			for _, f := range convert.Eligible(files, target) {
				eligible[f] = true
			}
		}

		skipped := 0
		for _, path := range files {
			display := path
			if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
				display = rel
			}
			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			line := fmt.Sprintf("%s %s", scanExtStyle.Render(fmt.Sprintf("%-4s", ext)), scanFileStyle.Render(display))
			if eligible != nil && !eligible[path] {
				skipped++
				line += " " + scanDimStyle.Render("(already target format)")
			}
			fmt.Fprintln(os.Stdout, line)
		}

		summary := fmt.Sprintf("%d file(s)", len(files))
		if eligible != nil {
			summary += fmt.Sprintf(", %d to convert", len(files)-skipped)
		}
		fmt.Fprintln(os.Stdout, scanDimStyle.Render(summary))
		return nil
	},
}

var (
	scanFileStyle = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanExtStyle  = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanDimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	scanCmd.Flags().StringVarP(&scanTarget, "format", "f", "", "mark files already in this target format")
	rootCmd.AddCommand(scanCmd)
}
