package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klokku/dailybudget/internal/app"
	"github.com/klokku/dailybudget/internal/cli"
	"github.com/klokku/dailybudget/internal/config"
	"github.com/klokku/dailybudget/internal/utils"
	"github.com/klokku/dailybudget/pkg/budget_calculation"
	"github.com/klokku/dailybudget/pkg/budget_engine"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagIncome       string
	flagGoals        []string
	flagHabits       []string
	flagDate         string
	flagTransactions string
	flagJSON         bool
	flagNoAdvanced   bool
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate a daily budget locally",
	Example: `  dailybudget calculate --income 2500 --goal save_more --date 2024-12-25
  dailybudget calculate --income 5000 --habit impulse_buying --transactions spending.json --json`,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&flagIncome, "income", "i", "", "Monthly income")
	calculateCmd.Flags().StringSliceVarP(&flagGoals, "goal", "g", nil, "Financial goal (save_more, pay_off_debt, investing), repeatable")
	calculateCmd.Flags().StringSliceVar(&flagHabits, "habit", nil, "Spending habit (impulse_buying, no_budgeting, credit_dependency), repeatable")
	calculateCmd.Flags().StringVarP(&flagDate, "date", "d", "", "Target date (YYYY-MM-DD), defaults to today")
	calculateCmd.Flags().StringVarP(&flagTransactions, "transactions", "t", "", "JSON file with recent transactions, newest first")
	calculateCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	calculateCmd.Flags().BoolVar(&flagNoAdvanced, "no-advanced", false, "Skip the transaction based adjustments")
	_ = calculateCmd.MarkFlagRequired("income")
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	income, err := decimal.NewFromString(flagIncome)
	if err != nil {
		return fmt.Errorf("invalid --income %q: %w", flagIncome, err)
	}

	request := budget_calculation.CalculationRequestDTO{
		MonthlyIncome: &income,
		Goals:         flagGoals,
		Habits:        flagHabits,
		TargetDate:    flagDate,
	}
	if flagNoAdvanced {
		advanced := false
		request.EnableAdvancedFeatures = &advanced
	}
	if flagTransactions != "" {
		transactions, err := readTransactions(flagTransactions)
		if err != nil {
			return err
		}
		request.TransactionHistory = transactions
	}

	engine := budget_engine.NewEngine(app.EngineSettings(cfg.Engine), utils.SystemClock{})
	result := engine.Calculate(request.ToInput())

	return writeResult(cmd.OutOrStdout(), result, flagJSON)
}

func readTransactions(path string) ([]budget_calculation.TransactionDTO, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions file: %w", err)
	}
	defer file.Close()

	var transactions []budget_calculation.TransactionDTO
	if err := json.NewDecoder(file).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("failed to parse transactions file %s: %w", path, err)
	}
	return transactions, nil
}

func writeResult(w io.Writer, result budget_engine.CalculationResult, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(budget_calculation.ResultToDTO(result))
	}
	_, err := fmt.Fprintln(w, cli.RenderResult(result))
	return err
}
