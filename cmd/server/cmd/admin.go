package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolcms/server/internal/domain/users"
	"github.com/schoolcms/server/internal/storage/postgres"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <username> <password>",
	Short: "Create an admin account",
	Long: `Create an admin account with the given credentials. If the
username already exists the command succeeds without changing it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		repo, err := postgres.NewRepository(pool)
		if err != nil {
			return err
		}

		user, err := users.NewService(repo.Users()).Provision(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "admin account %q ready (id %d)\n", user.Username, user.ID)
		return nil
	},
}
