package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/pyfmt/internal/configloader"
	"github.com/yaklabco/pyfmt/internal/logging"
	"github.com/yaklabco/pyfmt/internal/ui/pretty"
	"github.com/yaklabco/pyfmt/pkg/formatter"
	"github.com/yaklabco/pyfmt/pkg/render"
	"github.com/yaklabco/pyfmt/pkg/runner"
	"github.com/yaklabco/pyfmt/pkg/textdiff"
)

func textDiffStdin(src, dst string) string {
	return textdiff.Unified(src, dst, "STDIN (original)", "STDIN (formatted)")
}

type formatFlags struct {
	code             string
	lineLength       int
	targetVersions   []string
	pyi              bool
	ipynb            bool
	skipStringNorm   bool
	skipMagicComma   bool
	preview          bool
	pythonCellMagics []string
	include          string
	exclude          string
	extendExclude    string
	forceExclude     string
	check            bool
	diff             bool
	fast             bool
	quiet            bool
	verbose          bool
	workers          int
	noCache          bool
}

func newFormatFlags() *formatFlags {
	return &formatFlags{}
}

func addFormatFlags(cmd *cobra.Command, flags *formatFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.code, "code", "c", "", "format the code passed in as a string")
	f.IntVarP(&flags.lineLength, "line-length", "l", formatter.DefaultLineLength,
		"how many characters per line to allow")
	f.StringSliceVarP(&flags.targetVersions, "target-version", "t", nil,
		"python versions the output should support (e.g. py38)")
	f.BoolVar(&flags.pyi, "pyi", false, "format all input files as typing stubs")
	f.BoolVar(&flags.ipynb, "ipynb", false, "format all input files as Jupyter notebooks")
	f.BoolVarP(&flags.skipStringNorm, "skip-string-normalization", "S", false,
		"don't normalize string quotes or prefixes")
	f.BoolVarP(&flags.skipMagicComma, "skip-magic-trailing-comma", "C", false,
		"don't use trailing commas as a reason to split lines")
	f.BoolVar(&flags.preview, "preview", false, "enable style changes that may be promoted later")
	f.StringSliceVar(&flags.pythonCellMagics, "python-cell-magics", nil,
		"additional cell magics whose bodies are Python")
	f.StringVar(&flags.include, "include", "",
		"regex matching files to include when searching directories")
	f.StringVar(&flags.exclude, "exclude", "",
		"regex matching files and directories to exclude (replaces the default)")
	f.StringVar(&flags.extendExclude, "extend-exclude", "",
		"regex of additional files and directories to exclude")
	f.StringVar(&flags.forceExclude, "force-exclude", "",
		"regex excluding paths even when given explicitly")
	f.BoolVar(&flags.check, "check", false,
		"don't write files back, just report whether they would change")
	f.BoolVar(&flags.diff, "diff", false,
		"don't write files back, just print a diff to stdout")
	f.BoolVar(&flags.fast, "fast", false, "skip the equivalence and stability self checks")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "stop emitting non-error messages")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "emit a message for every processed file")
	f.IntVarP(&flags.workers, "workers", "j", 0, "number of parallel workers (0 = one per CPU)")
	f.BoolVar(&flags.noCache, "no-cache", false, "don't read or write the clean-file cache")
}

// applySettings fills in flag values from the project configuration for
// every flag the user did not set on the command line.
func applySettings(cmd *cobra.Command, flags *formatFlags, settings *configloader.Settings) {
	if settings == nil {
		return
	}
	changed := cmd.Flags().Changed
	if settings.LineLength != nil && !changed("line-length") {
		flags.lineLength = *settings.LineLength
	}
	if len(settings.TargetVersions) > 0 && !changed("target-version") {
		flags.targetVersions = settings.TargetVersions
	}
	if settings.Pyi != nil && !changed("pyi") {
		flags.pyi = *settings.Pyi
	}
	if settings.Ipynb != nil && !changed("ipynb") {
		flags.ipynb = *settings.Ipynb
	}
	if settings.SkipStringNormalization != nil && !changed("skip-string-normalization") {
		flags.skipStringNorm = *settings.SkipStringNormalization
	}
	if settings.SkipMagicTrailingComma != nil && !changed("skip-magic-trailing-comma") {
		flags.skipMagicComma = *settings.SkipMagicTrailingComma
	}
	if settings.Preview != nil && !changed("preview") {
		flags.preview = *settings.Preview
	}
	if settings.Fast != nil && !changed("fast") {
		flags.fast = *settings.Fast
	}
	if settings.Workers != nil && !changed("workers") {
		flags.workers = *settings.Workers
	}
	if settings.Include != nil && !changed("include") {
		flags.include = *settings.Include
	}
	if settings.Exclude != nil && !changed("exclude") {
		flags.exclude = *settings.Exclude
	}
	if settings.ExtendExclude != nil && !changed("extend-exclude") {
		flags.extendExclude = *settings.ExtendExclude
	}
	if settings.ForceExclude != nil && !changed("force-exclude") {
		flags.forceExclude = *settings.ForceExclude
	}
	if len(settings.PythonCellMagics) > 0 && !changed("python-cell-magics") {
		flags.pythonCellMagics = settings.PythonCellMagics
	}
}

func buildMode(flags *formatFlags) (formatter.Mode, error) {
	mode := formatter.Mode{
		LineLength:          flags.lineLength,
		IsPyi:               flags.pyi,
		IsIpynb:             flags.ipynb,
		StringNormalization: !flags.skipStringNorm,
		MagicTrailingComma:  !flags.skipMagicComma,
		Preview:             flags.preview,
	}
	if len(flags.targetVersions) > 0 {
		mode.TargetVersions = make(map[formatter.TargetVersion]bool)
		for _, name := range flags.targetVersions {
			v, err := formatter.ParseTargetVersion(name)
			if err != nil {
				return mode, err
			}
			mode.TargetVersions[v] = true
		}
	}
	if len(flags.pythonCellMagics) > 0 {
		mode.PythonCellMagics = notebookMagics(flags.pythonCellMagics)
	}
	return mode, nil
}

func notebookMagics(extra []string) map[string]bool {
	magics := map[string]bool{
		"capture": true, "prun": true, "pypy": true, "python": true,
		"python3": true, "time": true, "timeit": true,
	}
	for _, m := range extra {
		magics[strings.TrimPrefix(m, "%%")] = true
	}
	return magics
}

func compilePattern(name, value string) (*regexp.Regexp, error) {
	if value == "" {
		return nil, nil
	}
	re, err := regexp.Compile(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s regex: %w", name, err)
	}
	return re, nil
}

func runFormat(cmd *cobra.Command, args []string, flags *formatFlags) error {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(workDir, configPath)
	if err != nil {
		return err
	}
	if loadResult.Path != "" {
		logger.Debug("using configuration", logging.FieldPath, loadResult.Path)
	}
	applySettings(cmd, flags, loadResult.Settings)

	mode, err := buildMode(flags)
	if err != nil {
		return err
	}
	logger.Debug("resolved mode",
		logging.FieldLineLength, flags.lineLength,
		logging.FieldTargets, flags.targetVersions)
	fmtr := formatter.New(render.New())

	// --code and stdin both format a single source to stdout.
	if cmd.Flags().Changed("code") {
		return formatCode(cmd.OutOrStdout(), fmtr, flags.code, mode, flags.fast)
	}
	if len(args) == 1 && args[0] == "-" {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprintln(cmd.ErrOrStderr(), "reading from standard input; press Ctrl-D when done")
		}
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return formatStdin(cmd.OutOrStdout(), fmtr, string(src), mode, flags)
	}

	include, err := compilePattern("include", flags.include)
	if err != nil {
		return err
	}
	exclude, err := compilePattern("exclude", flags.exclude)
	if err != nil {
		return err
	}
	extendExclude, err := compilePattern("extend-exclude", flags.extendExclude)
	if err != nil {
		return err
	}
	forceExclude, err := compilePattern("force-exclude", flags.forceExclude)
	if err != nil {
		return err
	}

	writeBack := runner.WriteBackYes
	colorMode, _ := cmd.Flags().GetString("color")
	colorEnabled := pretty.IsColorEnabled(colorMode, cmd.OutOrStdout())
	switch {
	case flags.check:
		writeBack = runner.WriteBackCheck
	case flags.diff && colorEnabled:
		writeBack = runner.WriteBackColorDiff
	case flags.diff:
		writeBack = runner.WriteBackDiff
	}

	opts := runner.Options{
		Paths:         args,
		WorkingDir:    workDir,
		Include:       include,
		Exclude:       exclude,
		ExtendExclude: extendExclude,
		ForceExclude:  forceExclude,
		WriteBack:     writeBack,
		Mode:          mode,
		Fast:          flags.fast,
		NoCache:       flags.noCache,
		Jobs:          flags.workers,
	}

	ctx := logging.WithLogger(cmd.Context(), logger)
	result, err := runner.New(fmtr).Run(ctx, opts)
	if err != nil {
		return err
	}

	styles := pretty.NewStyles(colorEnabled)
	reportResult(cmd, result, styles, writeBack, flags)

	if code := result.ExitCode(writeBack); code != ExitSuccess {
		return &exitError{code: code}
	}
	return nil
}

func reportResult(cmd *cobra.Command, result *runner.Result, styles *pretty.Styles, writeBack runner.WriteBack, flags *formatFlags) {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	for _, outcome := range result.Files {
		if outcome.Diff != "" {
			if writeBack == runner.WriteBackColorDiff {
				fmt.Fprint(stdout, styles.ColorizeDiff(outcome.Diff))
			} else {
				fmt.Fprint(stdout, outcome.Diff)
			}
		}
		switch {
		case outcome.Error != nil:
			fmt.Fprint(stderr, styles.FormatFileStatus(outcome, writeBack))
		case flags.verbose,
			outcome.Changed && !flags.quiet && !writeBack.IsDiff():
			fmt.Fprint(stderr, styles.FormatFileStatus(outcome, writeBack))
		}
	}
	if !flags.quiet {
		fmt.Fprint(stderr, styles.FormatSummary(result.Stats, writeBack))
	}
}

// formatCode handles --code: the string goes through the full pipeline
// and the result lands on stdout.
func formatCode(out io.Writer, fmtr *formatter.Formatter, code string, mode formatter.Mode, fast bool) error {
	dst, err := fmtr.FormatFileContents(code, mode, fast)
	switch {
	case errors.Is(err, formatter.ErrNothingChanged):
		dst = code
		if dst != "" && !strings.HasSuffix(dst, "\n") {
			dst += "\n"
		}
	case formatter.IsInternalFault(err):
		fmt.Fprintln(os.Stderr, err)
		return &exitError{code: ExitInternalError}
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		return &exitError{code: ExitWouldReformat}
	}
	_, werr := io.WriteString(out, dst)
	return werr
}

// formatStdin mirrors file handling for "-": the formatted text always
// goes to stdout, and --check only affects the exit status.
func formatStdin(out io.Writer, fmtr *formatter.Formatter, src string, mode formatter.Mode, flags *formatFlags) error {
	var dst string
	var err error
	if mode.IsIpynb {
		dst, err = fmtr.FormatIpynb(src, mode, flags.fast)
	} else {
		dst, err = fmtr.FormatFileContents(src, mode, flags.fast)
	}

	changed := true
	switch {
	case errors.Is(err, formatter.ErrNothingChanged):
		dst = src
		changed = false
	case formatter.IsInternalFault(err):
		fmt.Fprintln(os.Stderr, err)
		return &exitError{code: ExitInternalError}
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		return &exitError{code: ExitWouldReformat}
	}

	if flags.check {
		if changed {
			return &exitError{code: ExitWouldReformat}
		}
		return nil
	}
	if flags.diff {
		if _, err := io.WriteString(out, textDiffStdin(src, dst)); err != nil {
			return err
		}
		return nil
	}
	_, werr := io.WriteString(out, dst)
	return werr
}
