package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisdamba/foodispatch/internal/app"
	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "foodispatch",
	Short: "Order-to-partner matching and dispatch core for a delivery marketplace",
	Long:  `foodispatch runs the matching and dispatch pipeline behind a last-mile delivery marketplace: a job queue that decouples order placement from partner matching, a nearest-partner assignment engine constrained by working schedules, and a realtime event stream pushed to subscribed clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		core, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer core.Close()

		demo, _ := cmd.Flags().GetBool("demo")
		return core.Run(ctx, demo)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int("seed", 42, "Random seed for generated data")
	rootCmd.Flags().Int("initial-users", 25, "Initial number of customers")
	rootCmd.Flags().Int("initial-partners", 10, "Initial number of delivery partners")
	rootCmd.Flags().Int("queue-workers", 4, "Number of job queue workers")
	rootCmd.Flags().Int("queue-size", 256, "Job queue buffer size")
	rootCmd.Flags().Float64("payment-success-rate", 0.9, "Simulated payment verification success rate")
	rootCmd.Flags().Bool("restore-partner-on-delivery", false, "Return partners to the available pool after delivery")
	rootCmd.Flags().Bool("kafka-enabled", false, "Mirror the event stream to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().Bool("demo", false, "Run a scripted order through the pipeline on startup")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
