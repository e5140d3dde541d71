package users

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/bittyphp/bitty-security/internal/config"
	"github.com/bittyphp/bitty-security/internal/db/bunx"
	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/provider"
)

var (
	usernameFlag string
	passwordFlag string
	rolesInput   []string
	typeFlag     string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			// Read password from stdin
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set to create database users")
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		userType := security.UserTypeDefault
		if typeFlag != "" {
			userType = security.UserType(typeFlag)
		}

		ctx := context.Background()
		row, err := provider.NewBun(db).Create(ctx, usernameFlag, string(hash), "", rolesInput, userType)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		fmt.Printf("Created user %s (id=%s) with roles %v\n", row.Username, row.ID, rolesInput)
		return nil
	},
}
