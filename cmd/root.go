package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrserver/config"
	"github.com/leocov-dev/mrserver/internal/shared"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mrserver",
	Short: "Build dedicated Minecraft servers from Modrinth modpacks",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		shared.Exitln(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mrserver.toml, .yaml or .json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	bindFlag(rootCmd.PersistentFlags(), "verbose", "verbose")
	rootCmd.PersistentFlags().String("log-file", "", "Also write log output to this file")
	bindFlag(rootCmd.PersistentFlags(), "log-file", "log-file")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every prompt")
	bindFlag(rootCmd.PersistentFlags(), "non-interactive", "yes")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("mrserver")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			shared.Exitf("Failed to read config file: %v\n", err)
		}
	}
}

// newLogger builds the run logger. The returned func closes the log file, if any.
func newLogger() (*log.Logger, func(), error) {
	level := log.InfoLevel
	if viper.GetBool("verbose") {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if path := viper.GetString("log-file"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = func() { _ = f.Close() }
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	}), closeFn, nil
}

// bindFlag lets a config file or MRSERVER_ environment variable set the same key as the flag.
func bindFlag(flags *pflag.FlagSet, key string, name string) {
	_ = viper.BindPFlag(key, flags.Lookup(name))
}
