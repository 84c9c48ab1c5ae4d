/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the disbursement-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	SeedRandomSeed    int64  `mapstructure:"SEED_RANDOM_SEED"`
	RegistryFilePath  string `mapstructure:"REGISTRY_FILE_PATH"`
	ReminderCronSpec  string `mapstructure:"REMINDER_CRON_SPEC"`
	StageDelayScale   int    `mapstructure:"STAGE_DELAY_SCALE_PERCENT"`
	SettlementModeDef string `mapstructure:"SETTLEMENT_MODE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SEED_RANDOM_SEED", 42)
	viper.SetDefault("REGISTRY_FILE_PATH", "registry.yaml")
	viper.SetDefault("REMINDER_CRON_SPEC", "@hourly")
	viper.SetDefault("STAGE_DELAY_SCALE_PERCENT", 100)
	viper.SetDefault("SETTLEMENT_MODE", "RTGS")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("SEED_RANDOM_SEED")
	_ = viper.BindEnv("REGISTRY_FILE_PATH")
	_ = viper.BindEnv("REMINDER_CRON_SPEC")
	_ = viper.BindEnv("STAGE_DELAY_SCALE_PERCENT")
	_ = viper.BindEnv("SETTLEMENT_MODE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	if config.StageDelayScale <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive stage delay scale; coercing to 100\" scale_percent=%d", config.StageDelayScale)
		config.StageDelayScale = 100
	}
	config.SettlementModeDef = strings.ToUpper(strings.TrimSpace(config.SettlementModeDef))
	switch config.SettlementModeDef {
	case "RTGS", "NEFT", "IMPS":
	default:
		log.Printf("level=warn component=config msg=\"unknown settlement mode; defaulting to RTGS\" mode=%q", config.SettlementModeDef)
		config.SettlementModeDef = "RTGS"
	}

	return
}
