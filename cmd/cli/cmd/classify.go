package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finwise/internal/domain"
)

var (
	classifyAmount float64
	classifyType   string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <description>",
	Short: "Classify a single transaction description",
	Long: `Classify asks the configured AI provider for a category and falls
back to the keyword rules when it is unavailable. Nothing is stored.

Example:
  finwise classify "Uber ride to office" --amount 320`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Float64Var(&classifyAmount, "amount", 0, "transaction amount")
	classifyCmd.Flags().StringVar(&classifyType, "type", string(domain.TransactionTypeExpense), "transaction type (income or expense)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	txType, ok := domain.ParseTransactionType(classifyType)
	if !ok {
		return fmt.Errorf("--type must be income or expense, got %q", classifyType)
	}
	if classifyAmount < 0 {
		return fmt.Errorf("--amount cannot be negative")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	description := strings.Join(args, " ")
	result := a.Classifier.Classify(ctx, description, classifyAmount, txType)
	return printJSON(cmd.OutOrStdout(), result)
}
