package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	defaults "github.com/fairflowapp/fairflow/internal/config"
	"github.com/fairflowapp/fairflow/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".fairflow"
	envPrefix  = "FAIRFLOW"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate caches struct info across config loads.
var validate = validator.New()

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; absence is fine.
	_ = godotenv.Load()

	// Environment variable handling must be set up BEFORE reading the
	// config file so env vars can influence config loading.
	viper.SetEnvPrefix(envPrefix) // e.g., FAIRFLOW_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")

	potentialProjectConfigDir := viper.GetString("project.rootDir")
	if potentialProjectConfigDir == "" {
		potentialProjectConfigDir = defaults.DefaultRootDir
	}

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(potentialProjectConfigDir); !os.IsNotExist(err) {
			// Project-specific config directory exists. Prioritize it.
			viper.AddConfigPath(potentialProjectConfigDir)
			viper.SetConfigName(configName)
		} else {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home) // $HOME/.fairflow.yaml
			viper.AddConfigPath(".")  // ./.fairflow.yaml
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Set default values
	viper.SetDefault("project.rootDir", defaults.DefaultRootDir)
	viper.SetDefault("project.archiveDir", defaults.DefaultArchiveDir)
	viper.SetDefault("project.currentTab", "")
	viper.SetDefault("data.file", defaults.DefaultDataFile)
	viper.SetDefault("data.format", defaults.DefaultDataFormat)
	viper.SetDefault("tasks.autoResetIntervalSeconds", 30)

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintln(os.Stderr, "Error unmarshaling config:", err)
		os.Exit(1)
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintln(os.Stderr, "Error validating config:", err)
		os.Exit(1)
	}
}

// GetConfig returns the loaded application configuration.
func GetConfig() types.AppConfig {
	return GlobalAppConfig
}
