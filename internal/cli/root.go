// Package cli provides the command-line interface for posterize.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/posterize/internal/version"
)

// NewRootCmd builds the posterize command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "posterize",
		Short: "Reduce images to a small, styled colour palette",
		Long: `Posterize reduces an image to a handful of flat colours.

Colours are chosen with importance-weighted k-means in CIE-Lab, so small
high-contrast details are not swallowed by large flat areas. The resulting
palette can be styled (vibrant, pastel, warm, ...), shifted in lightness and
constrained to a colour harmony before every pixel is remapped.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newPaletteCmd())

	return rootCmd
}

// newLogger builds the command logger from the global verbosity flags.
func newLogger(cmd *cobra.Command) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	level := hclog.Info
	switch {
	case verbose:
		level = hclog.Debug
	case quiet:
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "posterize",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
}

// infof writes progress to stderr unless --quiet is set.
func infof(cmd *cobra.Command, format string, args ...any) {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeVersion(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")

	return cmd
}

func writeVersion(w io.Writer, asJSON bool) error {
	if asJSON {
		return writeJSON(w, version.GetInfo())
	}
	_, err := fmt.Fprintln(w, version.String())
	return err
}
