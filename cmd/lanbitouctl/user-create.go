package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lanbitou/lanbitou-in-go/pkg/authn"
	"github.com/lanbitou/lanbitou-in-go/pkg/db"
	gormstore "github.com/lanbitou/lanbitou-in-go/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a user account",
	Long: `Create a user account.

The password is read from the --password flag, or from stdin when the flag
is omitted.

Example:
  lanbitouctl user create alice@example.com --password secret
  echo secret | lanbitouctl user create alice@example.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email := args[0]
		password, _ := cmd.Flags().GetString("password")

		if err := createUser(email, password); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("password", "", "Password for the new user (read from stdin when omitted)")
}

func createUser(email, password string) error {
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	hashed, err := authn.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := gormstore.NewUsersStore(database).CreateUser(email, hashed)
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s (id %d)\n", user.Email, user.ID)
	return nil
}
