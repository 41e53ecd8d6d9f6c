// Package cli provides the Cobra command structure for pyfmt.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pyfmt/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root pyfmt command.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	flags := newFormatFlags()

	rootCmd := &cobra.Command{
		Use:   "pyfmt [flags] [src ...]",
		Short: "An uncompromising Python code formatter",
		Long: `pyfmt reformats Python source files into one deterministic style.

Give it files, directories or "-" for standard input. Directories are
searched recursively for .py, .pyi and .ipynb files. Unless --fast is
set, every reformatted file is proven equivalent to its input and
stable under a second pass before anything is written.

Examples:
  pyfmt .                       # Reformat the current project in place
  pyfmt --check src/            # Fail if anything would change
  pyfmt --diff app.py           # Show the changes without writing
  pyfmt -c "x=1"                # Format a code string to stdout
  cat app.py | pyfmt -          # Format stdin to stdout`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, flags)
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.SetLevel(logging.LevelFor(debug, flags.quiet))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "path to pyproject.toml or .pyfmt.yaml")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output: auto, always, never")

	addFormatFlags(rootCmd, flags)

	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			logger := logging.New("info")
			logger.SetOutput(os.Stdout)
			logger.Info("pyfmt",
				logging.FieldVersion, info.Version,
				logging.FieldCommit, info.Commit,
				logging.FieldBuilt, info.Date,
			)
		},
	}
}
