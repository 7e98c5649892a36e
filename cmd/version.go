package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leocov-dev/mrserver/config"
	"github.com/leocov-dev/mrserver/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if config.Version == "" {
			fmt.Println("mrserver (development build)")
			return
		}
		fmt.Println("mrserver", config.Version)
		fmt.Println("User-Agent:", core.UserAgent())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
