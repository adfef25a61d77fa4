package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	httptransport "lyceum/contexts/identity-access/account-service/transport/http"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

// systemAdmin acts for the operator; audit rows record it as the actor.
var systemAdmin = &gate.Principal{ID: "system", Role: gate.RoleAdmin}

var roleReason string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Administer user accounts",
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <user|admin|banned>",
	Short: "Change a user's role and record it in the audit log",
	Example: `  lyceumctl user set-role 3f0c... admin --reason "first administrator"
  lyceumctl user set-role 3f0c... banned --reason spam`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := httptransport.UpdateRoleRequest{Role: args[1], Reason: roleReason}
		if details := validation.Struct(req); len(details) > 0 {
			return fmt.Errorf("invalid request: %s %s", details[0].Field, details[0].Detail)
		}
		user, err := app.Modules.Accounts.Handler.UpdateRoleHandler(cmd.Context(), systemAdmin, args[0], "cli", req)
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return formatOutput(cmd.OutOrStdout(), user, func(w io.Writer) {
			fmt.Fprintf(w, "%s <%s> is now %s\n", user.UserID, user.Email, user.Role)
		})
	},
}

func init() {
	userSetRoleCmd.Flags().StringVar(&roleReason, "reason", "", "Justification stored with the audit entry")

	userCmd.AddCommand(userSetRoleCmd)
	rootCmd.AddCommand(userCmd)
}
