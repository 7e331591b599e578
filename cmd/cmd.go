package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	inMemory   bool
)

var rootCmd = &cobra.Command{
	Use:   "timekeeper",
	Short: "Timekeeper",
	Long:  `Records employee time against projects, with weekly submission and approval.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from path, with ENV_ prefixed overrides.
// Containers set APP_ENV=production or DOCKER_ENV=true and skip the file.
func loadConfig(path string) (*internal.Config, error) {
	var cfg *internal.Config
	if inContainer() {
		cfg = internal.LoadConfigFromEnv()
	} else {
		var err error
		if cfg, err = readConfigFile(path); err != nil {
			return nil, err
		}
		cfg.ApplyDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return cfg, nil
}

func inContainer() bool {
	return os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true"
}

func readConfigFile(path string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing config.yml")
	httpServerCmd.Flags().BoolVar(&inMemory, "in-memory", false, "Keep all data in memory only")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}
