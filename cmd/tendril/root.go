package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tendril",
	Short: "Tendril is a request-dispatch SDK for voice skill backends",
	Long: `Tendril routes platform request envelopes through handler chains,
interceptors and exception handlers. This binary bundles a small demo
skill so the pipeline can be explored without writing code: talk to it
from the terminal, replay scripted conversations, or expose it over
HTTP and MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}
