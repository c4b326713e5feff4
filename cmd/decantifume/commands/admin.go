package commands

import (
	"fmt"
	"log/slog"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"
	"decantifume-api/internal/service"
	"decantifume-api/internal/validation"

	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account. Fails if the email is already registered.

Examples:
  decantifume create-admin --name "Store Admin" --email admin@example.com --password s3cret!A`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateAdmin(cmd)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "Display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Login password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command) error {
	ctx := cmd.Context()

	req := &dto.CreateUserRequest{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     model.RoleAdmin,
		Status:   model.UserStatusActive,
	}
	if err := validation.New().Validate(req); err != nil {
		for _, fe := range validation.FieldErrors(err) {
			fmt.Printf("  %s: %s\n", fe.Path, fe.Message)
		}
		return fmt.Errorf("invalid admin details")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	users := service.NewUserService(repository.NewUserRepository(db), cfg.BcryptSaltRounds)
	user, err := users.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	slog.Info("admin created", "id", user.ID, "email", user.Email)
	return nil
}
