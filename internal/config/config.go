package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	CSVPath        string        `mapstructure:"CSV_PATH"`
	QuestionsPath  string        `mapstructure:"QUESTIONS_PATH"`
	ResultsDir     string        `mapstructure:"RESULTS_DIR"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	UseLLM         bool          `mapstructure:"USE_LLM"`
	OllamaHost     string        `mapstructure:"OLLAMA_HOST"`
	OllamaModel    string        `mapstructure:"OLLAMA_MODEL"`
	HistoryLimit   int           `mapstructure:"HISTORY_LIMIT"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CSV_PATH", "data/maintenance_records.csv")
	v.SetDefault("QUESTIONS_PATH", "test_questions.json")
	v.SetDefault("RESULTS_DIR", "results")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("USE_LLM", false)
	v.SetDefault("OLLAMA_HOST", "http://127.0.0.1:11434")
	v.SetDefault("OLLAMA_MODEL", "phi3:mini")
	v.SetDefault("HISTORY_LIMIT", 30)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
