package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/chrisdamba/foodispatch/internal/factories"
	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/repositories/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the Postgres store with generated customers, partners and schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("seed requires postgres_dsn to be configured")
		}

		ctx := context.Background()
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		truncate, _ := cmd.Flags().GetBool("truncate")
		return seedDatabase(ctx, pool, cfg, truncate)
	},
}

func init() {
	seedCmd.Flags().Bool("truncate", false, "Delete existing rows before seeding")
	rootCmd.AddCommand(seedCmd)
}

func seedDatabase(ctx context.Context, pool *pgxpool.Pool, cfg *models.Config, truncate bool) error {
	userRepo := postgres.NewUserRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	availabilityRepo := postgres.NewAvailabilityRepository(pool)

	if truncate {
		if err := availabilityRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("truncate partner_availability: %w", err)
		}
		if err := partnerRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("truncate partners: %w", err)
		}
		if err := userRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("truncate users: %w", err)
		}
	}

	userFactory := &factories.UserFactory{}
	partnerFactory := &factories.PartnerFactory{}

	bar := progressbar.Default(int64(cfg.InitialUsers+cfg.InitialPartners), "seeding")

	users := make([]models.User, 0, cfg.InitialUsers)
	for i := 0; i < cfg.InitialUsers; i++ {
		users = append(users, userFactory.CreateUser(cfg))
		bar.Add(1)
	}
	if err := userRepo.BulkCreate(ctx, users); err != nil {
		return fmt.Errorf("bulk create users: %w", err)
	}

	partners := make([]models.Partner, 0, cfg.InitialPartners)
	var windows []models.AvailabilityWindow
	for i := 0; i < cfg.InitialPartners; i++ {
		partner := partnerFactory.CreatePartner(cfg)
		partners = append(partners, partner)
		windows = append(windows, partnerFactory.CreateWeekdayWindows(partner.ID)...)
		bar.Add(1)
	}
	if err := partnerRepo.BulkCreate(ctx, partners); err != nil {
		return fmt.Errorf("bulk create partners: %w", err)
	}
	if err := availabilityRepo.BulkCreate(ctx, windows); err != nil {
		return fmt.Errorf("bulk create availability windows: %w", err)
	}

	fmt.Printf("Seeded %d users, %d partners, %d availability windows\n",
		len(users), len(partners), len(windows))
	return nil
}
