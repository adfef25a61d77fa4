package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"lyceum/internal/shared/gate"
)

var tokenUserID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage session tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Mint a session token for an existing user",
	Long: `Mint a session token for an existing user. The role claim is taken
from the stored account; requests re-read it anyway, so the token never
grants more than the account holds.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, found, err := app.Modules.Accounts.LookupRole.Execute(cmd.Context(), tokenUserID)
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}
		if !found {
			return fmt.Errorf("user %s not found", tokenUserID)
		}
		token, err := app.Sessions.Issue(cmd.Context(), gate.Principal{ID: tokenUserID, Role: role})
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		out := map[string]string{
			"user_id":    tokenUserID,
			"role":       string(role),
			"token":      token.Value,
			"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		}
		return formatOutput(cmd.OutOrStdout(), out, func(w io.Writer) {
			fmt.Fprintf(w, "user:    %s (%s)\nexpires: %s\n%s\n", tokenUserID, role, out["expires_at"], token.Value)
		})
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Revoke a session token before it expires",
	Long: `Revoke a session token before it expires. Revocations are shared with
the API through redis, so redis_addr must be configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.Config.RedisAddr == "" {
			return errors.New("token revoke needs redis_addr: without redis the revocation stays in this process and the API never sees it")
		}
		if err := app.Sessions.Revoke(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token revoked")
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenUserID, "user", "", "User ID to mint the token for")
	_ = tokenIssueCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(tokenIssueCmd, tokenRevokeCmd)
	rootCmd.AddCommand(tokenCmd)
}
