// Package cli provides the Cobra command structure for e2egen.
//
// The root command generates one GitHub Actions workflow file per e2e test
// identifier. It has no subcommands, so every positional argument is an
// identifier. Inspection modes are flags:
//
//   - --list: print the test functions found in the e2e test package
//   - --variants: print the known workflow variants
//   - --stdout: print the rendered workflows instead of writing them
//
// Dependencies are held in an [App] so tests can swap the filesystem,
// printer and logger. [RunWithConfig] returns an [ExecuteResult] instead of
// exiting, and [Execute] is the only place that calls os.Exit.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"e2egen/internal/config"
	"e2egen/internal/output"
	"e2egen/internal/workflow"
)

// App is the dependency container shared by all commands.
type App struct {
	Config  *config.Config
	Printer *output.Printer
	Logger  *log.Logger
	Fs      afero.Fs

	overrides variantOverrides
}

// variantOverrides holds variant settings given on the command line.
// Nil fields leave the resolved variant unchanged.
type variantOverrides struct {
	guard      *string
	cacheReset *bool
	notify     *bool
}

// NewApp creates an [App] writing to the real filesystem and terminal.
func NewApp(cfg *config.Config) *App {
	return &App{
		Config:  cfg,
		Printer: output.NewPrinter(),
		Logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "e2egen",
			Level:  log.WarnLevel,
		}),
		Fs: afero.NewOsFs(),
	}
}

// renderer builds the workflow renderer for the configured variant.
func (app *App) renderer() (*workflow.Renderer, error) {
	variant, err := app.Config.ResolveVariant("")
	if err != nil {
		return nil, err
	}

	o := app.overrides
	if o.guard != nil {
		variant.Guard = *o.guard
	}
	if o.cacheReset != nil {
		variant.CacheReset = *o.cacheReset
	}
	if o.notify != nil {
		variant.Notify = *o.notify
	}

	r, err := workflow.NewRenderer(app.Config.WorkflowJob(), variant)
	if err != nil {
		return nil, err
	}

	v := r.Variant()
	app.Logger.Debug("resolved variant",
		"name", v.Name,
		"go", v.GoVersion,
		"guard", v.Guard,
		"cache_reset", v.CacheReset,
		"notify", v.Notify,
	)
	return r, nil
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	outputDir  string
	variant    string
	goVersion  string
	timeout    string
	modulePath string
	testsDir   string
	guard      string
	cacheReset bool
	notify     bool
}

// NewRootCommand creates the root command.
func NewRootCommand(app *App) *cobra.Command {
	flags := &globalFlags{}
	gen := &generateFlags{}

	rootCmd := &cobra.Command{
		Use:   "e2egen <identifier> [identifier...]",
		Short: "Generate GitHub Actions workflows for e2e tests",
		Long: `Generate one GitHub Actions workflow per e2e test.

Each identifier produces .github/workflows/<identifier>.yml running
"go test -run ^<identifier>$" against the e2e test package. Existing files
are overwritten. Empty identifiers are skipped.

Examples:
  e2egen Test_UserBrevProjectBrevV0 Test_NoProjectBrev
  e2egen --all --filter 'Test_No*'
  e2egen --from e2etest/tests.csv --variant notify
  e2egen --stdout --variant guarded Test_NoProjectBrev
  e2egen --list
  e2egen --variants`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.apply(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case gen.list:
				return runList(app, gen.filter, args)
			case gen.variants:
				return runVariants(app, args)
			default:
				return runGenerate(cmd, app, gen, args)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (overrides the default search)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVarP(&flags.outputDir, "output-dir", "o", "", "directory workflow files are written to")
	pf.StringVarP(&flags.variant, "variant", "V", "", "workflow variant (see --variants)")
	pf.StringVar(&flags.goVersion, "go-version", "", "Go toolchain version for actions/setup-go")
	pf.StringVar(&flags.timeout, "timeout", "", "go test -timeout value")
	pf.StringVar(&flags.modulePath, "module-path", "", "Go package passed to go test")
	pf.StringVar(&flags.testsDir, "tests-dir", "", "directory of the e2e test package")
	pf.StringVar(&flags.guard, "guard", "", "only run when the head commit message contains this marker")
	pf.BoolVar(&flags.cacheReset, "cache-reset", false, "clear the Go test cache before running")
	pf.BoolVar(&flags.notify, "notify", false, "send a notification when the job fails")

	f := rootCmd.Flags()
	f.BoolVar(&gen.all, "all", false, "generate for every test found in the e2e test package")
	f.StringVar(&gen.filter, "filter", "", "with --all or --list, keep tests matching this glob or substring")
	f.StringVar(&gen.from, "from", "", "read identifiers from a CSV or YAML manifest")
	f.BoolVar(&gen.dryRun, "dry-run", false, "show what would be generated without writing files")
	f.BoolVar(&gen.stdout, "stdout", false, "print the rendered workflows instead of writing them")
	f.BoolVar(&gen.list, "list", false, "list the tests --all would generate")
	f.BoolVar(&gen.variants, "variants", false, "list the known workflow variants")
	rootCmd.MarkFlagsMutuallyExclusive("dry-run", "stdout", "list", "variants")

	return rootCmd
}

// apply loads the --config file and folds command-line overrides into
// app.Config. Flags take precedence over every other source.
func (f *globalFlags) apply(cmd *cobra.Command, app *App) error {
	if f.verbose {
		app.Logger.SetLevel(log.DebugLevel)
	}

	if f.configPath != "" {
		cfg, err := config.NewLoader().LoadFromFile(f.configPath)
		if err != nil {
			return err
		}
		app.Config = cfg
		app.Logger.Debug("loaded config", "path", f.configPath)
	}

	changed := cmd.Flags().Changed
	cfg := app.Config
	if changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if changed("variant") {
		cfg.Variant = f.variant
	}
	if changed("go-version") {
		cfg.GoVersion = f.goVersion
	}
	if changed("timeout") {
		cfg.Job.Timeout = f.timeout
	}
	if changed("module-path") {
		cfg.Job.ModulePath = f.modulePath
	}
	if changed("tests-dir") {
		cfg.Discovery.Dir = f.testsDir
	}
	if changed("guard") {
		app.overrides.guard = &f.guard
	}
	if changed("cache-reset") {
		app.overrides.cacheReset = &f.cacheReset
	}
	if changed("notify") {
		app.overrides.notify = &f.notify
	}
	return nil
}

// ExecuteResult holds the outcome of running the CLI.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// Execute loads configuration, runs the CLI and exits the process.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	result := RunWithConfig(cfg)
	os.Exit(result.ExitCode)
}

// RunWithConfig runs the CLI with os.Args and returns the exit code instead
// of exiting. Interrupt cancels generation between identifiers.
func RunWithConfig(cfg *config.Config) ExecuteResult {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return run(ctx, NewApp(cfg), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, app *App, args []string, stderr io.Writer) ExecuteResult {
	if args == nil {
		args = []string{}
	}

	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExecuteResult{ExitCode: 0}
	}
	if code, ok := IsExitError(err); ok {
		return ExecuteResult{ExitCode: code, Err: err}
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExecuteResult{ExitCode: 1, Err: err}
}
