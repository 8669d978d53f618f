package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tendril/internal/adapters/file"
	"github.com/aretw0/tendril/internal/adapters/memory"
	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/ports"
)

// dialogCmd represents the dialog command
var dialogCmd = &cobra.Command{
	Use:   "dialog",
	Short: "Talk to the demo skill from your terminal",
	Long: `Starts an interactive conversation with the bundled demo skill.
Each line is an intent name followed by optional key=value slots:

  > RememberIntent fact="the cake is a lie"
  > RecallIntent

Type q to quit, /reset to start a fresh session.

With --script, a YAML conversation is replayed instead and the command
fails when a scripted expectation is not met.`,
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		locale, _ := cmd.Flags().GetString("locale")
		user, _ := cmd.Flags().GetString("user")
		persist, _ := cmd.Flags().GetString("persist")
		script, _ := cmd.Flags().GetString("script")
		quiet, _ := cmd.Flags().GetBool("quiet")

		skill, err := demoSkill(commandAdapter(persist), commandLogger(debug))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if script != "" {
			s, err := cli.LoadScript(script)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := cli.RunScript(cmd.Context(), skill, s, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		err = cli.RunDialog(skill, cli.DialogOptions{
			Locale: locale,
			UserID: user,
			Debug:  debug,
			Quiet:  quiet,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// commandAdapter picks where the demo skill keeps persistent attributes: on
// disk under dir when given, otherwise in process memory.
func commandAdapter(dir string) ports.PersistenceAdapter {
	if dir != "" {
		return file.New(dir)
	}
	return memory.New()
}

func commandLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

func init() {
	rootCmd.AddCommand(dialogCmd)

	dialogCmd.Flags().String("locale", "en-US", "Locale stamped on synthesized requests")
	dialogCmd.Flags().String("user", "user-dialog", "User id for the simulated session")
	dialogCmd.Flags().String("persist", "", "Directory for persistent attributes (empty keeps them in memory)")
	dialogCmd.Flags().String("script", "", "YAML script to replay instead of reading the terminal")
	dialogCmd.Flags().Bool("quiet", false, "Suppress the banner and system messages")
}
