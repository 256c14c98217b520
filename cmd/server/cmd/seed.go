package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolcms/server/internal/domain/content"
	"github.com/schoolcms/server/internal/domain/users"
	"github.com/schoolcms/server/internal/storage/postgres"
)

var (
	seedAdminUsername string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a development admin account and sample content",
	Long: `Insert a development admin account and one sample record per
collection. Intended for local development only; seeding is idempotent
for the admin account but sample records are inserted on every run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminUsername, "admin-username", "admin", "seeded admin username")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "admin123", "seeded admin password")
}

func runSeed(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	userService := users.NewService(repo.Users())
	if _, err := userService.Provision(ctx, seedAdminUsername, seedAdminPassword); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin account %q ready\n", seedAdminUsername)

	samples := map[content.Kind]map[string]any{
		content.KindArticle: {
			"title":   "Welcome to the new school year",
			"excerpt": "Classes resume Monday. Here is what parents need to know.",
			"body":    "<p>We are excited to welcome students back. The first week follows a shortened schedule.</p>",
		},
		content.KindEvent: {
			"title":       "Open house",
			"description": "<p>Visit the classrooms and meet the teachers.</p>",
			"date":        time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		},
		content.KindGallery: {
			"caption": "Main building",
			"image":   "/uploads/sample-building.jpg",
		},
		content.KindOrgMember: {
			"name": "Jane Smith",
			"role": "Principal",
		},
	}

	for _, desc := range content.Descriptors() {
		payload, ok := samples[desc.Kind]
		if !ok {
			continue
		}
		service := content.NewService(desc, repo.Content(desc))
		record, err := service.Create(ctx, payload)
		if err != nil {
			return fmt.Errorf("seed %s: %w", desc.Path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s record %v\n", desc.Path, record["id"])
	}

	return nil
}
