package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tendril/internal/cli"
)

// invokeCmd represents the invoke command
var invokeCmd = &cobra.Command{
	Use:   "invoke [envelope.json]",
	Short: "Send one request envelope through the demo skill",
	Long: `Reads a request envelope as JSON from a file or stdin, dispatches it
through the demo skill, and writes the response envelope to stdout.
Useful for piping captured platform traffic through the pipeline:

  tendril invoke captured.json | jq .response.outputSpeech`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		persist, _ := cmd.Flags().GetString("persist")
		pretty, _ := cmd.Flags().GetBool("pretty")

		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		skill, err := demoSkill(commandAdapter(persist), commandLogger(debug))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := cli.RunInvoke(skill, cli.InvokeOptions{Path: path, Pretty: pretty}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)

	invokeCmd.Flags().String("persist", "", "Directory for persistent attributes (empty keeps them in memory)")
	invokeCmd.Flags().Bool("pretty", false, "Indent the response JSON")
}
