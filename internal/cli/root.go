package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/maintlog/backend/internal/assistant"
	"github.com/maintlog/backend/internal/config"
	"github.com/maintlog/backend/internal/ingest"
	"github.com/maintlog/backend/internal/llm"
)

var csvPath string

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Maintenance-log question-answering assistant",
	Long: `Loads an equipment maintenance log, collapses it into per-incident
work orders and answers analytic questions about it, either interactively,
over HTTP, or against a fixed question suite.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "path to the maintenance CSV (overrides CSV_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(evalCmd)
}

// setup loads config, builds the logger and constructs the assistant over the
// work-order table. The table is loaded once and shared read-only afterwards.
func setup() (config.Config, zerolog.Logger, *assistant.Assistant, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, err
	}
	if csvPath != "" {
		cfg.CSVPath = csvPath
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "maintlog-assistant").Logger()

	_, workOrders, err := ingest.LoadAll(cfg.CSVPath)
	if err != nil {
		return cfg, logger, nil, err
	}
	logger.Info().Int("work_orders", len(workOrders)).Str("csv", cfg.CSVPath).Msg("maintenance log loaded")

	var synth llm.Synthesizer
	if cfg.UseLLM {
		if cfg.OllamaHost == "mock" {
			synth = llm.MockSynthesizer{ModelVersion: "mock-v1"}
			logger.Info().Msg("using mock synthesizer")
		} else {
			synth = &llm.OllamaClient{
				Host:        cfg.OllamaHost,
				Model:       cfg.OllamaModel,
				Temperature: 0.2,
				MaxTokens:   180,
			}
		}
	}

	return cfg, logger, assistant.New(workOrders, synth, logger), nil
}
