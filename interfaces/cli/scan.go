package cli

import (
	"fmt"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	dynamorepo "redstream/infrastructure/persistence/dynamodb"
)

var scanMinScore float64

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List processed records at or above a score threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, logger, awsCfg, err := setup(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		repo := dynamorepo.NewRecordRepository(
			awsdynamodb.NewFromConfig(awsCfg),
			cfg.TableName,
			logger,
		)

		records, err := repo.ScanHighScore(ctx, scanMinScore)
		if err != nil {
			return err
		}

		for _, rec := range records {
			fmt.Printf("%s\tscore=%d\tcomments=%d\t%s\n", rec.ID, rec.Score, rec.NumComments, rec.Title)
		}
		fmt.Printf("%d records with score >= %g\n", len(records), scanMinScore)
		return nil
	},
}

func init() {
	scanCmd.Flags().Float64Var(&scanMinScore, "min-score", 1, "minimum score to include")
}
