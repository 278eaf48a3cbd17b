// Command wallcontroller runs the wall controller event core and its
// device services.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LeonardoBeccarini/wallcontroller/internal/config"
	"github.com/LeonardoBeccarini/wallcontroller/internal/logging"
	"github.com/LeonardoBeccarini/wallcontroller/internal/services/controller"
)

type rootOpts struct {
	configPath string
	logLevel   string
	hostname   string
	noMQTT     bool
}

// load applies defaults, the config file, WALLCTL_* variables and finally
// the flags.
func (o *rootOpts) load() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.hostname != "" {
		cfg.Hostname = o.hostname
	}
	if o.noMQTT {
		cfg.MQTT.Disabled = true
	}
	return cfg, cfg.Validate()
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:           "wallcontroller",
		Short:         "Wall controller event core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .json or .toml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "override log level")
	pf.StringVar(&opts.hostname, "hostname", "", "override controller hostname")
	pf.BoolVar(&opts.noMQTT, "no-mqtt", false, "run without a broker")

	root.AddCommand(newRunCmd(opts), newConfigCmd(opts))
	return root
}

func newRunCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the controller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, closer := logging.New(cfg.Log, cfg.Hostname)
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := controller.New(ctx, cfg, log)
			if err != nil {
				log.Error().Err(err).Msg("startup failed")
				return err
			}
			err = app.Run(ctx)
			app.Close()
			if errors.Is(err, controller.ErrRestartRequested) {
				log.Warn().Msg("restarting")
				return reexec()
			}
			return err
		},
	}
}

func newConfigCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// reexec replaces the process with a fresh copy of itself.
func reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "wallcontroller:", err)
		os.Exit(1)
	}
}
