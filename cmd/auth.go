package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain and store a Google OAuth token for an account",
		Long: `Authorize meetsched against the Gmail and Calendar APIs.

Without --code, prints the authorization URL to open in a browser.
Rerun with --code and the code Google displays to store the token:

  meetsched auth
  meetsched auth --code 4/0Af...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := cmd.Flags().GetString("code")
			if err != nil {
				return err
			}

			if code == "" {
				fmt.Println("Open this URL in your browser and authorize access:")
				fmt.Println()
				fmt.Println("  " + google.GetAuthURL())
				fmt.Println()
				fmt.Println("Then rerun with --code and the code Google displays.")
				return nil
			}

			if err := google.SaveTokenForAccount(context.Background(), account, code); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			fmt.Printf("Token stored for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to store the token under (default: 'default')")
	cmd.Flags().String("code", "", "Authorization code from the Google consent screen")

	return cmd
}
