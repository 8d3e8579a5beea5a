package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rentledger/internal/config"
	"rentledger/internal/session"
)

// tokenCmd signs a session token for local development against AUTH_JWT_SECRET.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a development session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, _ := cmd.Flags().GetBool("admin")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg := config.Load()
			v, err := session.NewVerifier(cfg.AuthJWTSecret, cfg.AdminUserIDs)
			if err != nil {
				return err
			}
			role := session.RoleTenant
			if admin {
				role = session.RoleAdmin
			}
			tok, err := v.Issue(args[0], role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Bool("admin", false, "grant the admin role")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
