package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := repository.InitDB(cfg, log)
		if err != nil {
			return err
		}
		log.Info("running database migrations")
		if err := repository.Migrate(db); err != nil {
			return err
		}
		log.Info("database migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
