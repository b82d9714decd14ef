// Package cmd provides the CLI commands for wordex.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/config"
	"github.com/Aman-CERP/wordex/internal/dictionary"
	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/logging"
	"github.com/Aman-CERP/wordex/internal/profiling"
	"github.com/Aman-CERP/wordex/pkg/version"
)

// DefaultIndexName names the index in the project root when --index is not
// given.
const DefaultIndexName = "wordex"

// app holds the global flags and the state shared by subcommands for one
// invocation.
type app struct {
	indexBase string
	debug     bool
	logFile   string
	noColor   bool
	plain     bool
	profile   profiling.Paths

	loaded bool
	cfg    *config.Config
	cfgErr error
	root   string

	logCleanup func()
	profiler   *profiling.Run
}

// reportedError marks an error whose details were already printed.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// NewRootCmd creates the root command for the wordex CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "wordex",
		Short: "Build word indexes of paged text and query them",
		Long: `wordex builds an inverted index from the pages of text documents and
answers boolean queries over it.

  wordex build docs/        extract pages and build the index
  wordex query              interactive session
  wordex run queries.txt    run a query script

Queries combine indexed words with & | ^ and -, numeric page ranges,
atLeast/exactly operators and variables:

  x = cat & dog
  x - range(1, 10)`,
		Version:            version.Version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error { return a.teardown() },
	}
	cmd.SetVersionTemplate("wordex version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.indexBase, "index", "x", "", "Index base path, e.g. out/corpus (default: ./"+DefaultIndexName+" in the project root)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging to stderr and the log file")
	flags.StringVar(&a.logFile, "log-file", "", "Log file path (default: ~/.wordex/logs/wordex.log)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&a.plain, "plain", false, "Plain progress output instead of the TUI")
	flags.StringVar(&a.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	flags.StringVar(&a.profile.Heap, "profile-mem", "", "Write heap profile to file")
	flags.StringVar(&a.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newExtractCmd(a))
	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newQueryCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newWordsCmd(a))
	cmd.AddCommand(newInfoCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLogsCmd(a))

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	if _, ok := werrors.As(err); ok {
		_, _ = fmt.Fprint(w, werrors.FormatForCLI(err))
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

// setup installs the logger and starts profiling.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if a.debug {
		logCfg = logging.DebugConfig()
	} else if cfg, err := a.config(); err == nil {
		logCfg.Level = cfg.LogLevel
	}
	if a.logFile != "" {
		logCfg.FilePath = a.logFile
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		if a.debug {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		// Logging is best effort outside --debug.
		logger, cleanup = slog.New(slog.DiscardHandler), func() {}
	}
	slog.SetDefault(logger)
	a.logCleanup = cleanup

	if a.profile.Enabled() {
		run, err := profiling.Start(a.profile)
		if err != nil {
			return err
		}
		a.profiler = run
	}

	slog.Debug("command_started",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", version.Version))
	return nil
}

func (a *app) teardown() error {
	var err error
	if a.profiler != nil {
		err = a.profiler.Stop()
		a.profiler = nil
	}
	if a.logCleanup != nil {
		a.logCleanup()
		a.logCleanup = nil
	}
	return err
}

// config loads the configuration of the project holding the working
// directory. The result is cached for the invocation.
func (a *app) config() (*config.Config, error) {
	if a.loaded {
		return a.cfg, a.cfgErr
	}
	a.loaded = true

	cwd, err := os.Getwd()
	if err != nil {
		a.cfgErr = werrors.IOError("cannot determine working directory", err)
		return nil, a.cfgErr
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}
	a.root = root

	cfg, err := config.Load(root)
	if err != nil {
		a.cfgErr = werrors.Wrap(werrors.ErrCodeConfigInvalid, err).
			WithSuggestion("Check .wordex.yaml, or run 'wordex config show --source defaults'")
		return nil, a.cfgErr
	}
	if a.noColor {
		cfg.UI.NoColor = true
	}
	if a.plain {
		cfg.UI.Plain = true
	}
	a.cfg = cfg
	return cfg, nil
}

var indexExtensions = []string{
	indexer.ExtGrid, indexer.ExtWords, indexer.ExtConw, indexer.ExtCong,
	indexer.ExtConi, indexer.ExtIndex, indexer.ExtLock,
}

// files resolves the index named by --index. A trailing index file
// extension is ignored, so "out/corpus.conw" names "out/corpus".
func (a *app) files() (indexer.Files, error) {
	if a.indexBase == "" {
		if _, err := a.config(); err != nil {
			return indexer.Files{}, err
		}
		return indexer.FilesFor(a.root, DefaultIndexName), nil
	}

	abs, err := filepath.Abs(a.indexBase)
	if err != nil {
		return indexer.Files{}, werrors.IOError("cannot resolve index path", err)
	}
	name := filepath.Base(abs)
	if ext := filepath.Ext(name); slices.Contains(indexExtensions, ext) {
		name = name[:len(name)-len(ext)]
	}
	return indexer.FilesFor(filepath.Dir(abs), name), nil
}

// openIndex opens the index for reading.
func (a *app) openIndex() (*index.Reader, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	files, err := a.files()
	if err != nil {
		return nil, err
	}
	if !files.Exists() {
		return nil, werrors.New(werrors.ErrCodeIndexNotFound, "index not found: "+files.Name, nil).
			WithDetail("path", files.Conw()).
			WithSuggestion("Run 'wordex build <documents>' first, or pass --index")
	}

	reader, err := index.Open(files, cfg.Query.CacheSize)
	if err != nil {
		if errors.Is(err, index.ErrCorrupt) {
			return nil, werrors.Wrap(werrors.ErrCodeCorruptIndex, err).
				WithSuggestion("Rebuild the index with 'wordex build'")
		}
		return nil, werrors.IOError("cannot open index", err).WithDetail("path", files.Conw())
	}
	return reader, nil
}

// wordList creates the dictionary filter from the configuration.
func (a *app) wordList(cfg *config.Config) (*dictionary.WordList, error) {
	skip := cfg.Index.SkipWords
	if path := cfg.Index.SkipWordsFile; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.root, path)
		}
		loaded, err := dictionary.LoadSkipFile(path)
		if err != nil {
			return nil, werrors.New(werrors.ErrCodeSkipListInvalid, "cannot read skip words file", err).
				WithDetail("path", path)
		}
		skip = loaded
	}

	words, err := dictionary.New(skip, cfg.Index.MinWordLength, cfg.Index.MaxWordLength)
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeConfigInvalid, err)
	}
	return words, nil
}
