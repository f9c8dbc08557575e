package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cityconnect/internal/database"
	"cityconnect/internal/repository"
	"cityconnect/internal/service"
)

// newSetRoleCommand is the only way to change a role; the API never does.
func newSetRoleCommand() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:     "set-role",
		Short:   "Change the role of an existing user",
		Example: "  cityconnect set-role --email admin@city.example --role admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			pool, err := database.NewPostgresPool(cmd.Context(), cfg.Postgres, "cityconnect-cli")
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			auth := service.NewAuthService(repository.NewUserRepository(pool), nil, logger)
			if err := auth.SetRole(cmd.Context(), email, role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user to change")
	cmd.Flags().StringVar(&role, "role", "", "new role: citizen or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
