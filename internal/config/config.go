package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	} `mapstructure:"server"`

	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Agenda struct {
		// Cron spec for the morning follow-up digest.
		Spec    string `mapstructure:"spec"`
		Enabled bool   `mapstructure:"enabled"`
	} `mapstructure:"agenda"`
}

// Load reads config.yaml (optional) with env overrides. A .env file is
// honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	viper.SetDefault("database.dsn", "file:travelcrm.db?_pragma=busy_timeout(5000)")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("agenda.spec", "0 8 * * *")
	viper.SetDefault("agenda.enabled", true)

	viper.SetEnvPrefix("TRAVELCRM")
	viper.AutomaticEnv()
	_ = viper.BindEnv("database.dsn", "DATABASE_URL", "TRAVELCRM_DATABASE_DSN")
	_ = viper.BindEnv("server.port", "PORT", "TRAVELCRM_SERVER_PORT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("failed to read config file: %v", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}
	return &cfg
}
