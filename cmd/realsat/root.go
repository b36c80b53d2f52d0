package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "realsat",
	Short:        "Digital SAT practice exam backend",
	Long:         "RealSAT serves timed four-module practice exams: module flow, authoritative answer validation, scaled scoring and results.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}
