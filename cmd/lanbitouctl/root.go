package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lanbitouctl",
	Short: "Lanbitou vault server control tool",
	Long:  `A tool for running and administering the Lanbitou vault server.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
