// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Downloads struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"downloads"`
	Tracker struct {
		// CheckInterval is the periodic background check cadence, in minutes.
		CheckInterval int `mapstructure:"check_interval"`
		// MinInterval is the floor between two cycles, in minutes. A cycle
		// requested earlier than this after the previous one is skipped.
		MinInterval int `mapstructure:"min_interval"`
	} `mapstructure:"tracker"`
	Reminder struct {
		// Interval between reading reminders, in hours.
		Interval int `mapstructure:"interval"`
	} `mapstructure:"reminder"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")
	viper.AddConfigPath(".") // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// e.g., YOMU_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("YOMU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8475)
	viper.SetDefault("database.path", "./yomu.db")
	viper.SetDefault("downloads.path", "./downloads")
	viper.SetDefault("tracker.check_interval", 30)
	viper.SetDefault("tracker.min_interval", 15)
	viper.SetDefault("reminder.interval", 24)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
