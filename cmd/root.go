// Package cmd provides the entrypoint for the github-commit-emailer cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConfigFileEnv names the environment variable holding the configuration file path.
const ConfigFileEnv = "CONFIG_FILE"

var logger = slog.New(slog.DiscardHandler)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
	// Presence enables a bool when its environment variable is set, whatever the value.
	Presence bool
	// Count makes an int flag repeatable (-vvv).
	Count bool
}

// New returns the root command for the github-commit-emailer.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "github-commit-emailer",
		Short:         "Send commit notification emails for GitHub push webhooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: config.Global.Logging.CallerTrace,
				Level:     slog.LevelWarn - slog.Level(config.Global.Logging.Verbosity*4),
			})).With("mode", config.Global.Mode)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return cmdService().RunE(cmd, args)
			case config.ModeLambdaHTTP:
				return cmdLambdaHTTP().RunE(cmd, args)
			case config.ModeLambdaEvent:
				return cmdLambdaEvent().RunE(cmd, args)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	configFilePath := os.Getenv(ConfigFileEnv)
	if configFilePath == "" {
		configFilePath = "config.yaml"
	}

	// Configuration loading & defaults
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapInt)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, lambdaEnvMapString)
}
