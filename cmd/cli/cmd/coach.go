package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finwise/internal/api/handlers"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/pipeline"
)

var coachCSV string

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Generate coaching insights",
	Long: `Coach analyses the most recent stored transactions together with
the active goals. With --csv the transactions come from a file instead and
are classified in memory without being stored.

Example:
  finwise coach
  finwise coach --csv statements/jan.csv`,
	Args: cobra.NoArgs,
	RunE: runCoach,
}

func init() {
	coachCmd.Flags().StringVar(&coachCSV, "csv", "", "analyse this CSV file instead of stored transactions")
}

func runCoach(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var txs []domain.TransactionRecord
	if coachCSV != "" {
		data, err := os.ReadFile(coachCSV)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", coachCSV, err)
		}
		rows, rowErrors, err := pipeline.ParseCSV(data)
		if err != nil {
			return err
		}
		for _, rowErr := range rowErrors {
			log.Warn().Int("line", rowErr.Line).Msg(rowErr.Message)
		}
		now := time.Now().UTC()
		for _, row := range rows {
			txn := domain.TransactionRecord{
				ID:          uuid.New().String(),
				UserID:      domain.DefaultUserID,
				Date:        row.Date,
				Amount:      row.Amount,
				Type:        row.Type,
				Description: row.Description,
				CreatedAt:   now,
			}
			a.Classifier.Classify(ctx, row.Description, row.Amount, row.Type).Apply(&txn)
			txs = append(txs, txn)
		}
	} else {
		txs, err = a.Store.ListTransactions(ctx, domain.DefaultUserID, handlers.InsightsTransactionLimit, 0)
		if err != nil {
			return err
		}
	}

	goals, err := a.Store.ListActiveGoals(ctx, domain.DefaultUserID, handlers.InsightsGoalLimit)
	if err != nil {
		return err
	}

	result, err := a.Coach.Coach(ctx, txs, goals)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}
