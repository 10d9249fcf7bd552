package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "dailybudget",
	Short: "Daily budget recommendations",
	Long:  "Calculate personalized daily spending budgets from income, goals, habits and recent transactions.",
	RunE:  runServe,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "./config/application.yaml", "Path to the YAML configuration file")
}
