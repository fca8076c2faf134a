package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Valerdy/captive-portal-sub000/internal/bootstrap"
	"github.com/Valerdy/captive-portal-sub000/internal/config"
	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/repository/sqlite"
	"github.com/Valerdy/captive-portal-sub000/internal/support/hash"
)

func init() {
	var adminPassword string
	var adminEmail string
	var adminCmd = &cobra.Command{
		Use:   "admin-create <username>",
		Short: "Create an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenAndMigrate(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			password := adminPassword
			if password == "" {
				fmt.Print("Password: ")
				raw, err := term.ReadPassword(0)
				fmt.Println()
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = string(raw)
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			hashed, err := hasher.Hash(password)
			if err != nil {
				return err
			}

			store := sqlite.NewStore(db)
			user, err := store.Users().Create(cmd.Context(), &repository.User{
				Username: args[0],
				Email:    adminEmail,
				Password: hashed,
				IsAdmin:  true,
				Active:   true,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Printf("Admin %q created (id=%d)\n", user.Username, user.ID)
			return nil
		},
	}
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (prompted when omitted)")
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address")
	rootCmd.AddCommand(adminCmd)
}
