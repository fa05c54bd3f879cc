package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "gleandesk",
	Short: "Zendesk to Glean answer bridge",
	Long: `gleandesk bridges Zendesk and Glean Assistant: when a ticket is
tagged, the conversation is assembled into a prompt, Glean suggests a reply,
and the suggestion is posted back as an internal note. Agent feedback on the
suggestion is relayed to Glean for relevance tuning.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gleandesk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gleandesk version %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(serveCmd, statusCmd, feedbackCmd, formsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
