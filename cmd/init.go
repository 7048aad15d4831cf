package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/typelint/lint"
)

// initCmd: typelint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigFile
		}
		if err := initConfigurationFile(path); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", path)
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = lint.DefaultConfigFile
	}

	// Create a yaml file with every rule at its default
	d, err := yaml.Marshal(lint.DefaultConfig())
	if err != nil {
		return err
	}

	return os.WriteFile(configurationPath, d, 0o644)
}
