package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ddsconv/internal/codec"
	"ddsconv/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Show the type and dimensions of image files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := codec.New(codec.Options{})
		failed := 0
		for _, path := range args {
			probe, err := c.Describe(path)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stdout, "%s %s\n", inspectFileStyle.Render(path), inspectErrStyle.Render(err.Error()))
				continue
			}
			line := fmt.Sprintf("%s %s %dx%d", inspectFileStyle.Render(path), probe.Kind, probe.Width, probe.Height)
			if probe.Kind == "dds" {
				line += inspectDimStyle.Render(fmt.Sprintf(" %s, %d mip level(s)", probe.DDS, probe.MipCount))
			}
			fmt.Fprintln(os.Stdout, line)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) could not be inspected", failed, len(args))
		}
		return nil
	},
}

var (
	inspectFileStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectDimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectErrStyle  = lipgloss.NewStyle().Foreground(tui.ColorError)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
