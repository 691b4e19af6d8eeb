package cmd

import (
	"example.com/cartonbox/config"
	"example.com/cartonbox/internal/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Connect to the database and run schema migrations`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	// Connect runs the migrations against the write database.
	db, _, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)

	log.Info().Msg("Migrations completed")
	return nil
}
