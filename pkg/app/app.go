// Package app provides the scaffolding shared by Fleethub binaries: a cobra
// command with pflag option groups, optional viper config-file merging, and
// a signal-aware root context.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fleethub-io/fleethub/pkg/log"
)

// RunFunc is the application's main routine.
type RunFunc func() error

// Options abstracts the flag-bound option set of an application.
type Options interface {
	// AddFlags registers all option groups on the command's FlagSet.
	AddFlags(fs *pflag.FlagSet)

	// Complete fills in defaults that depend on other options.
	Complete() error

	// Validate checks the assembled options.
	Validate() error
}

// App is a runnable command-line application.
type App struct {
	name        string
	short       string
	description string
	options     Options
	run         RunFunc
}

// Option configures an App.
type Option func(*App)

// WithDescription sets the long help text.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions attaches the flag-bound options.
func WithOptions(opts Options) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the main routine.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.run = run }
}

// NewApp builds an App from its parts.
func NewApp(name, short string, opts ...Option) *App {
	a := &App{
		name:  name,
		short: short,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run parses flags and executes the application, exiting non-zero on error.
func (a *App) Run() error {
	cmd := a.buildCommand()
	return cmd.Execute()
}

func (a *App) buildCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.short,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := mergeConfigFile(configFile, cmd.Flags()); err != nil {
					return err
				}
			}

			if a.options != nil {
				if err := a.options.Complete(); err != nil {
					return err
				}
				if err := a.options.Validate(); err != nil {
					return err
				}
			}

			log.Info("Starting application", "name", a.name)
			return a.run()
		},
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a configuration file (YAML/TOML/JSON).")
	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}

	return cmd
}

// mergeConfigFile overlays values from a config file onto flags the user did
// not set explicitly, so the precedence is: flag > file > default.
func mergeConfigFile(path string, fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if setErr := fs.Set(f.Name, v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("failed to apply config value for %s: %w", f.Name, setErr)
		}
	})
	return err
}
