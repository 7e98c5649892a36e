package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrserver/cache"
	"github.com/leocov-dev/mrserver/config"
	"github.com/leocov-dev/mrserver/core"
	"github.com/leocov-dev/mrserver/fileio"
	"github.com/leocov-dev/mrserver/internal/shared"
	"github.com/leocov-dev/mrserver/serverpack"
	"github.com/leocov-dev/mrserver/sources"
)

const requestTimeout = 10 * time.Minute

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack <file.mrpack | directory>",
	Short: "Build server directories from a modpack or a directory of modpacks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := config.Load(viper.GetViper())
		if err != nil {
			shared.Exitln(err)
		}

		logger, closeLog, err := newLogger()
		if err != nil {
			shared.Exitln(err)
		}
		defer closeLog()

		packs, err := serverpack.FindPacks(args[0])
		if err != nil {
			shared.Exitf("Error: %v\n", err)
		}
		if len(packs) > 1 {
			fmt.Printf("Found %d .mrpack files.\n", len(packs))
		}

		if !confirmOverwrite(packs, opts.Output) {
			fmt.Println("Cancelled.")
			return
		}

		httpClient := core.NewHTTPClient(requestTimeout)
		resolver, err := sources.NewResolver(cache.New(), sources.ResolverOptions{
			BaseURL:     opts.Endpoints.Modrinth,
			MaxParallel: opts.Resolver.MaxParallel,
			HTTP:        httpClient,
			Logger:      logger,
		})
		if err != nil {
			shared.Exitln(err)
		}

		assembler := serverpack.NewAssembler(resolver, serverpack.Options{
			Download: fileio.DownloadOptions{
				MaxParallel: opts.Download.MaxParallel,
				MaxRetries:  opts.Download.MaxRetries,
				RetryDelay:  opts.Download.RetryDelay,
				Progress:    os.Stderr,
			},
			Endpoints: core.Endpoints{
				ForgeMaven:    opts.Endpoints.ForgeMaven,
				NeoForgeMaven: opts.Endpoints.NeoForgeMaven,
				QuiltMaven:    opts.Endpoints.QuiltMaven,
				FabricMeta:    opts.Endpoints.FabricMeta,
			},
			JavaMemory: opts.Java.Memory,
			HTTP:       httpClient,
			Logger:     logger,
		})

		batch := assembler.AssembleAll(cmd.Context(), packs, opts.Output, opts.Parallel)
		for _, r := range batch.Results {
			if r.Err != nil {
				fmt.Printf("Error processing %s: %v\n", r.Archive, r.Err)
			}
		}
		fmt.Printf("\nSuccessfully processed %d/%d modpacks.\n", batch.Succeeded, batch.Total())

		if batch.Succeeded == 0 {
			closeLog()
			os.Exit(1)
		}
		if viper.GetBool("pack.open") && batch.Total() == 1 {
			if err := open.Start(batch.Results[0].OutputDir); err != nil {
				fmt.Printf("Failed to open output directory: %v\n", err)
			}
		}
	},
}

// confirmOverwrite asks before output directories that already hold files are replaced.
func confirmOverwrite(packs []string, outputBase string) bool {
	var existing []string
	for _, dir := range serverpack.PackOutputDirs(outputBase, packs) {
		if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
			existing = append(existing, dir)
		}
	}
	if len(existing) == 0 {
		return true
	}

	for _, dir := range existing {
		fmt.Println("Output directory will be replaced:", dir)
	}
	ok, err := shared.PromptYesNo(os.Stdin, os.Stdout, "Continue? [Y/n]: ", viper.GetBool("non-interactive"))
	if err != nil {
		shared.Exitln(err)
	}
	return ok
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().StringP("output", "o", "", "Base directory for server output (default \"output_server\")")
	bindFlag(packCmd.Flags(), "output", "output")
	packCmd.Flags().BoolP("parallel", "p", false, "Process multiple modpacks in parallel")
	bindFlag(packCmd.Flags(), "parallel", "parallel")
	packCmd.Flags().StringP("memory", "m", "", "Java heap size for the start scripts (default \"4G\")")
	bindFlag(packCmd.Flags(), "java.memory", "memory")
	packCmd.Flags().Int("retries", 0, "Download attempts per file (default 3)")
	bindFlag(packCmd.Flags(), "download.max-retries", "retries")
	packCmd.Flags().Bool("open", false, "Open the output directory when a single modpack was processed")
	bindFlag(packCmd.Flags(), "pack.open", "open")
}
