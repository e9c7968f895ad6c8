package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/mailsense/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		credentialsFile string
		tokenFile       string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only Gmail access",
		Long: `Run the OAuth authorization-code flow from the terminal.

Opens nothing by itself: it prints the authorization URL, you visit it in a
browser, grant read-only Gmail access, and paste the resulting code back
here. The token is cached on disk for the serve command to use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			if credentialsFile == "" {
				credentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
			}
			if credentialsFile == "" {
				return fmt.Errorf("no OAuth credentials: set --credentials or GOOGLE_CREDENTIALS_FILE")
			}

			return runAuth(cmd.Context(), credentialsFile, tokenFile)
		},
	}

	cmd.Flags().StringVar(&credentialsFile, "credentials", "", "Path to Google OAuth credentials JSON. Can also use GOOGLE_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Path of the cached Gmail OAuth token. Default: "+google.DefaultTokenPath())

	return cmd
}

func runAuth(ctx context.Context, credentialsFile, tokenFile string) error {
	auth, err := google.NewAuthenticator(credentialsFile, tokenFile)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Println("Visit the following URL and grant read-only Gmail access:")
	fmt.Println()
	fmt.Println("  " + auth.AuthURL("state"))
	fmt.Println()
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code entered")
	}

	if err := auth.Exchange(ctx, code); err != nil {
		return err
	}

	fmt.Println("Authorization complete, token cached.")
	return nil
}
