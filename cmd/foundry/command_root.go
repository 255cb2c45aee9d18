package main

import (
	"github.com/picatz/foundry/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg    *config.Config
	logger = zap.NewNop().Sugar()

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "foundry",
	Short: "Call Microsoft Foundry models through the Responses API",
	Long: `Call Microsoft Foundry models through the OpenAI Responses API.

Settings are read from the environment (AZURE_AI_PROJECT_ENDPOINT,
AZURE_AI_FOUNDRY_ENDPOINT, AZURE_AI_API_KEY, and so on); flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zapcore.WarnLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		logger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
			level,
		)).Sugar()

		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and catalog scans to stderr")
}
