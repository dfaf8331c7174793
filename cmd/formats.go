package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ddsconv/internal/dds"
	"ddsconv/internal/format"
	"ddsconv/internal/tui"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List target formats and DDS sub-formats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, formatsHeadingStyle.Render("Targets:"))
		for _, f := range format.All {
			kind := "raster"
			if f.IsContainer() {
				kind = "container"
			}
			fmt.Fprintf(os.Stdout, "  %-5s %s\n", strings.ToLower(f.String()), formatsDimStyle.Render("."+f.Extension()+" "+kind))
		}

		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, formatsHeadingStyle.Render("DDS sub-formats (--dds-format):"))
		for _, f := range dds.Formats {
			note := "uncompressed"
			if f.Compressed() {
				note = "block compressed"
			}
			if f == dds.BC1RgbaUnorm {
				note += ", default"
			}
			fmt.Fprintf(os.Stdout, "  %-14s %s\n", f, formatsDimStyle.Render(note))
		}
	},
}

var (
	formatsHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	formatsDimStyle     = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(formatsCmd)
}
