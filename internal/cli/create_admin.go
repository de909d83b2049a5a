package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

// CreateAdminCommand creates a staff account. This is the only way to
// create the first account; there is no self-registration endpoint.
type CreateAdminCommand struct {
	Username     string
	Email        string
	Password     string
	Role         string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Account username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (required, min 12 characters)")
	fs.StringVar(&cmd.Role, "role", string(entities.AccountRoleAdmin), "Account role: admin or librarian")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -username <name> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a staff account for AUTH_MODE=local deployments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		return fmt.Errorf("flags -username, -email and -password are all required")
	}

	role := entities.AccountRole(cmd.Role)
	if role != entities.AccountRoleAdmin && role != entities.AccountRoleLibrarian {
		return fmt.Errorf("invalid role %q (want admin or librarian)", cmd.Role)
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	account, err := service.CreateAccount(cmd.Username, cmd.Email, cmd.Password, entities.AccountRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("Created %s account %q (id %d)\n", account.Role, account.Username, account.ID)
	return nil
}
