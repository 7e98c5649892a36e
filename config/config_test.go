package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	opts, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "output_server", opts.Output)
	assert.False(t, opts.Parallel)
	assert.Equal(t, DownloadOptions{MaxParallel: 10, MaxRetries: 3, RetryDelay: 2 * time.Second}, opts.Download)
	assert.Equal(t, 10, opts.Resolver.MaxParallel)
	assert.Equal(t, "4G", opts.Java.Memory)
	assert.Equal(t, "https://api.modrinth.com/v2", opts.Endpoints.Modrinth)
	assert.Equal(t, "https://meta.fabricmc.net", opts.Endpoints.FabricMeta)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MRSERVER_JAVA_MEMORY", "8G")
	t.Setenv("MRSERVER_DOWNLOAD_MAX_RETRIES", "5")

	v := viper.New()
	SetDefaults(v)
	v.Set("download.retry-delay", "500ms")
	v.Set("parallel", true)

	opts, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "8G", opts.Java.Memory)
	assert.Equal(t, 5, opts.Download.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, opts.Download.RetryDelay)
	assert.True(t, opts.Parallel)
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("download.max-parallel", 0)
	v.Set("resolver.max-parallel", -1)

	_, err := Load(v)
	assert.ErrorContains(t, err, "download.max-parallel")
	assert.ErrorContains(t, err, "resolver.max-parallel")
}
