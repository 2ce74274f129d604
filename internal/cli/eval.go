package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maintlog/backend/internal/eval"
)

var (
	evalQuestions string
	evalOut       string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the fixed question suite and save expected vs. actual answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, asst, err := setup()
		if err != nil {
			return err
		}
		if evalQuestions != "" {
			cfg.QuestionsPath = evalQuestions
		}
		if evalOut != "" {
			cfg.ResultsDir = evalOut
		}

		suite, err := eval.LoadSuite(cfg.QuestionsPath)
		if err != nil {
			return err
		}

		runner := eval.Runner{Assistant: asst, Logger: logger}
		report := runner.Run(cmd.Context(), suite)

		txtPath, jsonPath, err := eval.WriteReport(cfg.ResultsDir, report)
		if err != nil {
			return err
		}

		fmt.Println("Test results saved to:")
		fmt.Printf("  - %s\n", txtPath)
		fmt.Printf("  - %s\n", jsonPath)
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVar(&evalQuestions, "questions", "", "question suite JSON (overrides QUESTIONS_PATH)")
	evalCmd.Flags().StringVar(&evalOut, "out", "", "results directory (overrides RESULTS_DIR)")
}
