package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrative tasks",
	}

	var name, email, password string
	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create or promote the first admin account",
		Long: `Create the admin account named by ADMIN_EMAIL / ADMIN_PASSWORD, or promote
an existing account with that email to admin. Flags override the environment.

	inventory admin bootstrap --email root@example.com --password s3cret
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if name == "" {
				name = a.cfg.Admin.Name
			}
			if email == "" {
				email = a.cfg.Admin.Email
			}
			if password == "" {
				password = a.cfg.Admin.Password
			}

			// Bootstrap does not record activity.
			user, changed, err := a.authService(nil).EnsureAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}

			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s (%s)\n", user.Email, user.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin already exists: %s (%s)\n", user.Email, user.ID)
			}
			return nil
		},
	}
	bootstrapCmd.Flags().StringVar(&name, "name", "", "display name (default ADMIN_NAME)")
	bootstrapCmd.Flags().StringVar(&email, "email", "", "admin email (default ADMIN_EMAIL)")
	bootstrapCmd.Flags().StringVar(&password, "password", "", "admin password (default ADMIN_PASSWORD)")

	admin.AddCommand(bootstrapCmd)
	return admin
}
