package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/erp-ticket-service/internal/auth"
	"github.com/spec-kit/erp-ticket-service/internal/config"
)

var hashCost int

// hashPasswordCmd prints a bcrypt hash for seeding accounts directly in SQL.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost := hashCost
		if cost <= 0 {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cost = cfg.Auth.BcryptCost
		}
		hash, err := auth.HashPassword(args[0], cost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 0, "bcrypt cost (defaults to AUTH_BCRYPT_COST)")
	rootCmd.AddCommand(hashPasswordCmd)
}
