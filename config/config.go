package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version string

func SetVersion(version string) {
	Version = version
}

const EnvPrefix = "MRSERVER"

type Options struct {
	Output    string          `mapstructure:"output"`
	Parallel  bool            `mapstructure:"parallel"`
	Download  DownloadOptions `mapstructure:"download"`
	Resolver  ResolverOptions `mapstructure:"resolver"`
	Java      JavaOptions     `mapstructure:"java"`
	Endpoints EndpointOptions `mapstructure:"endpoints"`
}

type DownloadOptions struct {
	MaxParallel int           `mapstructure:"max-parallel"`
	MaxRetries  int           `mapstructure:"max-retries"`
	RetryDelay  time.Duration `mapstructure:"retry-delay"`
}

type ResolverOptions struct {
	MaxParallel int `mapstructure:"max-parallel"`
}

type JavaOptions struct {
	Memory string `mapstructure:"memory"`
}

type EndpointOptions struct {
	Modrinth      string `mapstructure:"modrinth"`
	ForgeMaven    string `mapstructure:"forge-maven"`
	NeoForgeMaven string `mapstructure:"neoforge-maven"`
	QuiltMaven    string `mapstructure:"quilt-maven"`
	FabricMeta    string `mapstructure:"fabric-meta"`
}

var defaults = map[string]any{
	"output":                   "output_server",
	"parallel":                 false,
	"download.max-parallel":    10,
	"download.max-retries":     3,
	"download.retry-delay":     2 * time.Second,
	"resolver.max-parallel":    10,
	"java.memory":              "4G",
	"endpoints.modrinth":       "https://api.modrinth.com/v2",
	"endpoints.forge-maven":    "https://maven.minecraftforge.net",
	"endpoints.neoforge-maven": "https://maven.neoforged.net/releases",
	"endpoints.quilt-maven":    "https://maven.quiltmc.org/repository/release",
	"endpoints.fabric-meta":    "https://meta.fabricmc.net",
}

// SetDefaults registers default values and environment lookup (MRSERVER_DOWNLOAD_MAX_RETRIES etc).
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load decodes the current viper settings into Options.
func Load(v *viper.Viper) (Options, error) {
	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return opts, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, opts.Validate()
}

func (o Options) Validate() error {
	var errs []error
	if o.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if o.Download.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("download.max-parallel must be at least 1, got %d", o.Download.MaxParallel))
	}
	if o.Download.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("download.max-retries must be at least 1, got %d", o.Download.MaxRetries))
	}
	if o.Download.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("download.retry-delay must not be negative, got %s", o.Download.RetryDelay))
	}
	if o.Resolver.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("resolver.max-parallel must be at least 1, got %d", o.Resolver.MaxParallel))
	}
	return errors.Join(errs...)
}
