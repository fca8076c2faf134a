package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Valerdy/captive-portal-sub000/internal/bootstrap"
	"github.com/Valerdy/captive-portal-sub000/internal/config"
	"github.com/Valerdy/captive-portal-sub000/internal/repository/sqlite"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

func init() {
	var sitesImportCmd = &cobra.Command{
		Use:   "sites-import <file.yaml>",
		Short: "Bulk import blacklist/whitelist entries from a YAML file",
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

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var entries []service.SiteCreateInput
			if err := yaml.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}

			store := sqlite.NewStore(db)
			sites := service.NewSiteService(store.Sites())
			result, err := sites.Import(cmd.Context(), entries)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d entries, %d already listed, %d failed\n",
				result.SuccessCount, result.SkippedCount, result.FailureCount)
			for _, msg := range result.Errors {
				fmt.Printf("  %s\n", msg)
			}
			return nil
		},
	}
	rootCmd.AddCommand(sitesImportCmd)
}
