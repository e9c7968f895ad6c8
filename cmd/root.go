package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailsense application
var rootCmd = &cobra.Command{
	Use:   "mailsense",
	Short: "Analyzes emails and drafts replies with a hosted language model",
	Long: `mailsense is a small web application that analyzes an email (language,
urgency, sentiment, category, summary, action items) and drafts reply
candidates in a chosen tone, length, and formality.

Emails can be pasted into the browser UI or pulled read-only from a Gmail
inbox after a one-time OAuth authorization.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailsense version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
