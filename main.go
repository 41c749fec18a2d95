package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jadenpxrk/fastats/internal/summary"
)

// version is the application version, set via ldflags.
var version string = "dev"

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// app carries the streams and state of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	v       *viper.Viper
	cfgFile string
	opts    Options
	log     *reporter
	formats *FormatData
	client  *http.Client

	// copyToClipboard receives the rendered table when --clipboard is set.
	copyToClipboard func(string) error

	tempDirs []string
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		v:      viper.New(),
		client: &http.Client{Timeout: 2 * time.Minute},

		copyToClipboard: clipboard.WriteAll,
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fastats [FILE|DIR|URL...]",
		Short: "fastats summarizes sequence lengths in FASTA files.",
		Long: `fastats reads FASTA files (or standard input when no file is given) and
prints one tab-separated row per input with the number of sequences and the
total, minimum, average and maximum sequence length.

Directories are searched for FASTA files, git repositories are cloned and
searched, and http(s) URLs are downloaded.`,
		Version:           version,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.run,
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/fastats/config.toml)")

	flags.Int("minlen", 0, "Minimum sequence length; shorter sequences are ignored")
	a.v.BindPFlag("minlen", flags.Lookup("minlen"))
	flags.BoolP("verbose", "v", false, "Report progress on standard error")
	a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	flags.String("log", "", "Append timestamped progress events to this file")
	a.v.BindPFlag("log", flags.Lookup("log"))

	// Directory expansion
	flags.StringP("include", "i", "", "Patterns of files to include when searching directories (comma-separated, e.g. *.fa,*.fna)")
	a.v.BindPFlag("include", flags.Lookup("include"))
	flags.StringP("exclude", "e", "", "Patterns to exclude when searching directories (comma-separated)")
	a.v.BindPFlag("exclude", flags.Lookup("exclude"))
	flags.BoolP("hidden", "H", false, "Search hidden files and directories")
	a.v.BindPFlag("hidden", flags.Lookup("hidden"))
	flags.Bool("no-ignore", false, "Don't respect .gitignore files")
	a.v.BindPFlag("no_ignore", flags.Lookup("no-ignore"))
	flags.Int("max-depth", 0, "Maximum directory depth to search (0 for no limit)")
	a.v.BindPFlag("max_depth", flags.Lookup("max-depth"))
	flags.String("formats", "", "YAML file of sequence formats recognized when searching directories")
	a.v.BindPFlag("formats", flags.Lookup("formats"))

	// Extra outputs
	flags.String("pdf", "", "Also save the table as a PDF report")
	a.v.BindPFlag("pdf", flags.Lookup("pdf"))
	flags.BoolP("clipboard", "c", false, "Also copy the table to the clipboard")
	a.v.BindPFlag("clipboard", flags.Lookup("clipboard"))
	flags.Bool("interactive", false, "Pick inputs with an interactive file finder")
	a.v.BindPFlag("interactive", flags.Lookup("interactive"))

	a.v.SetDefault("minlen", 0)
	a.v.SetDefault("max_depth", 0)
	a.v.SetDefault("hidden", false)
	a.v.SetDefault("no_ignore", false)

	return cmd
}

// initConfig reads in the config file and FASTATS_* environment variables.
// Precedence is default < config file < environment < flag.
func (a *app) initConfig() (string, error) {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "fastats"))
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("toml")
	}

	a.v.SetEnvPrefix("FASTATS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return a.v.ConfigFileUsed(), nil
}

// intOption reads an integer setting strictly. viper's GetInt turns a
// value it cannot parse into 0, which would hide a bad config file or
// FASTATS_* variable.
func (a *app) intOption(key, flag string) (int, error) {
	raw := a.v.Get(key)
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for --%s: must be an integer", fmt.Sprint(raw), flag)
	}
	return n, nil
}

// loadOptions resolves the run configuration from viper.
func (a *app) loadOptions() (Options, error) {
	minLen, err := a.intOption("minlen", "minlen")
	if err != nil {
		return Options{}, err
	}
	maxDepth, err := a.intOption("max_depth", "max-depth")
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		MinLen:      minLen,
		Verbose:     a.v.GetBool("verbose"),
		LogFile:     a.v.GetString("log"),
		PDFFile:     a.v.GetString("pdf"),
		Clipboard:   a.v.GetBool("clipboard"),
		Interactive: a.v.GetBool("interactive"),
		FormatsFile: a.v.GetString("formats"),
		Include:     parsePatterns(a.v.GetString("include")),
		Exclude:     parsePatterns(a.v.GetString("exclude")),
		ShowHidden:  a.v.GetBool("hidden"),
		NoIgnore:    a.v.GetBool("no_ignore"),
		MaxDepth:    maxDepth,
	}
	if opts.MinLen < 0 {
		return opts, fmt.Errorf("--minlen must not be negative, got %d", opts.MinLen)
	}
	if opts.MaxDepth < 0 {
		return opts, fmt.Errorf("--max-depth must not be negative, got %d", opts.MaxDepth)
	}
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if _, err := filepath.Match(p, ""); err != nil {
			return opts, fmt.Errorf("invalid glob pattern '%s': %w", p, err)
		}
	}
	return opts, nil
}

// setup resolves configuration and opens the loggers. Every failure here
// is a usage error: no input has been touched yet.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfgUsed, err := a.initConfig()
	if err != nil {
		return &usageError{err: err}
	}
	opts, err := a.loadOptions()
	if err != nil {
		return &usageError{err: err}
	}
	if opts.Interactive && len(args) > 0 {
		return usageErrorf("--interactive does not take positional arguments")
	}
	a.opts = opts

	a.log, err = newReporter(a.stderr, opts.Verbose, opts.LogFile)
	if err != nil {
		return &usageError{err: err}
	}
	if cfgUsed != "" {
		a.log.Debug("using config file", "path", cfgUsed)
	}

	a.formats, err = loadFormatData(opts.FormatsFile)
	if err != nil {
		if opts.FormatsFile != "" {
			a.log.Close()
			return &usageError{err: err}
		}
		a.log.Warn("could not load format definitions, using built-in defaults", "err", err)
		a.formats = defaultFormatData()
	}
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	defer a.log.Close()
	defer a.cleanup()

	inputs := args
	if a.opts.Interactive {
		selected, err := runInteractiveFinder(".", a.opts, a.formats)
		if err != nil {
			return err
		}
		if selected == nil {
			a.log.Info("interactive selection aborted")
			return nil
		}
		inputs = selected
	}

	a.log.Info("starting fastats", "minlen", a.opts.MinLen, "inputs", len(inputs), "log_file", a.opts.LogFile)
	start := time.Now()

	sources := a.resolveSources(inputs)

	var results []summary.Summary
	failed := 0
	for _, src := range sources {
		s, err := a.summarizeSource(src)
		if err != nil {
			a.log.Error("cannot read input", "source", src.Name, "err", err)
			failed++
			continue
		}
		results = append(results, s)
	}

	table := formatTable(results)
	if _, err := io.WriteString(a.stdout, table); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if a.opts.PDFFile != "" {
		if err := generatePDF(results, failed, a.opts, a.opts.PDFFile); err != nil {
			a.log.Error("cannot write PDF report", "path", a.opts.PDFFile, "err", err)
			return err
		}
		a.log.Info("wrote PDF report", "path", a.opts.PDFFile)
	}
	if a.opts.Clipboard {
		if err := a.copyToClipboard(table); err != nil {
			a.log.Warn("cannot copy output to clipboard", "err", err)
		} else {
			a.log.Info("output copied to clipboard")
		}
	}

	a.log.Info("finished", "sources", len(sources), "failed", failed, "duration", time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return &sourceFailures{failed: failed, total: len(sources)}
	}
	return nil
}

// summarizeSource opens, reads and closes one source.
func (a *app) summarizeSource(src Source) (summary.Summary, error) {
	if src.Err != nil {
		return summary.Summary{}, src.Err
	}
	a.log.Debug("reading", "source", src.Name)
	rc, err := src.Open()
	if err != nil {
		return summary.Summary{}, err
	}
	defer rc.Close()

	s, err := summary.Summarize(src.Name, rc, a.opts.MinLen)
	if err != nil {
		return summary.Summary{}, err
	}
	a.log.Info("summarized", "source", src.Name, "numseq", s.NumSeq, "total", s.Total)
	return s, nil
}

// cleanup removes temporary clones.
func (a *app) cleanup() {
	for _, dir := range a.tempDirs {
		a.log.Debug("removing temporary directory", "path", dir)
		_ = os.RemoveAll(dir)
	}
	a.tempDirs = nil
}

// execute runs one invocation and returns its exit status.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return newApp(stdin, stdout, stderr).execute(args)
}

func (a *app) execute(args []string) int {
	cmd := newRootCmd(a)
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		fmt.Fprint(a.stderr, cmd.UsageString())
		return exitUsage
	}
	// sourceFailures and output errors alike
	fmt.Fprintf(a.stderr, "fastats: %v\n", err)
	return exitFailed
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
