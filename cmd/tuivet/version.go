package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tuivet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tuivet %s (%s, %s/%s)\n",
			pipeline.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
