package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zylpheon/TheZylpheonAdmin/repository"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Create an admin account. Admins cannot be created through the public
registration endpoint.`,
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

		authSvc := services.NewAuthService(repository.NewUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
		user, err := authSvc.CreateAdmin(cmd.Context(), services.RegisterInput{
			Username: adminUsername,
			Email:    adminEmail,
			Password: adminPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		log.Info("admin created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
