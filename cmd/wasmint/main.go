package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "wasmint",
		Short:         "Run and inspect tree instruction modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v); err != nil {
				return err
			}
			processGlobalFlags(v)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default is ./wasmint.yaml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	v.BindPFlag("config", flags.Lookup("config"))
	v.BindPFlag("no-color", flags.Lookup("no-color"))
	v.BindPFlag("log-level", flags.Lookup("log-level"))

	cmd.AddCommand(
		newRunCmd(v),
		newCheckCmd(),
		newDisCmd(),
		newVersionCmd(),
	)
	return cmd
}

// initConfig reads the optional config file and the WASMINT_* environment.
func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix("WASMINT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wasmint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
