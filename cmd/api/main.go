package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "erp-ticket-service",
	Short: "ERP change-request ticketing backend",
	Long: `ERP change-request ticketing backend. Running without a subcommand
starts the HTTP server:

	erp-ticket-service
	erp-ticket-service serve
	erp-ticket-service migrate
	erp-ticket-service hash-password <password>
`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
