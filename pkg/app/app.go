// Package app builds the standard cobra command skeleton shared by every
// binary in this repo: named flag sections, a --config file merged through
// viper, and a run func invoked after options are completed and validated.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Missonix/SSAI-brain/pkg/utils/cliflag"
)

// RunFunc is the application entry point, called with the basename.
type RunFunc func(basename string) error

// CliOptions abstracts the option aggregate each binary defines.
type CliOptions interface {
	Flags() cliflag.NamedFlagSets
	Validate() []error
	// Complete fills defaults after flags and config file are merged.
	Complete() error
}

// App wraps a cobra root command.
type App struct {
	basename    string
	name        string
	description string
	options     CliOptions
	runFunc     RunFunc
	noConfig    bool
	cmd         *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions attaches the option aggregate.
func WithOptions(opts CliOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithDescription sets the long description.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithRunFunc sets the entry point.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithNoConfig disables the --config flag.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// WithDefaultValidArgs rejects positional arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {}
}

// NewApp builds an App from options.
func NewApp(name, basename string, opts ...Option) *App {
	a := &App{
		name:     name,
		basename: basename,
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

var cfgFile string

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.basename,
		Short:         a.name,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var namedFlagSets cliflag.NamedFlagSets
	if a.options != nil {
		namedFlagSets = a.options.Flags()
		for _, f := range namedFlagSets.FlagSets {
			cmd.Flags().AddFlagSet(f)
		}
	}

	if !a.noConfig {
		cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
			"Read configuration from the specified FILE (YAML).")
	}

	cmd.RunE = a.runCommand

	usageFmt := "Usage:\n  %s\n"
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		fmt.Fprintf(c.OutOrStdout(), "%s\n\n"+usageFmt, c.Long, c.UseLine())
		cliflag.PrintSections(c.OutOrStdout(), namedFlagSets, 0)
	})

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if !a.noConfig {
		if err := a.loadConfig(cmd.Flags()); err != nil {
			return err
		}
	}

	if a.options != nil {
		if err := a.options.Complete(); err != nil {
			return err
		}
		if errs := a.options.Validate(); len(errs) > 0 {
			for _, err := range errs {
				fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
			}
			return fmt.Errorf("%d configuration errors", len(errs))
		}
	}

	if a.runFunc != nil {
		return a.runFunc(a.basename)
	}
	return nil
}

// loadConfig merges the config file into the flag values through viper.
// Flags explicitly set on the command line win over the file.
func (a *App) loadConfig(fs *pflag.FlagSet) error {
	if cfgFile == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
	}

	var lastErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
			lastErr = fmt.Errorf("failed to apply config key %q: %w", f.Name, err)
		}
	})
	return lastErr
}

// Run executes the command and exits non-zero on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// Command exposes the underlying cobra command for binaries that add
// subcommands.
func (a *App) Command() *cobra.Command { return a.cmd }
