package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/headless"
	"github.com/killallgit/cortex-chat/pkg/logger"
	"github.com/killallgit/cortex-chat/pkg/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cortex-chat",
	Short: "Chat with your data through a Cortex agent",
	Long: `Ask questions in natural language. The agent answers with text,
citations from the search service and SQL, which is run against the warehouse.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt != "" {
			return runAsk(cmd, prompt)
		}
		return runInteractive(cmd)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.cortex/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.Flags().StringP("prompt", "p", "", "run a single prompt and exit")
}

// setup loads configuration and starts logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.WithComponent("cmd").Debug("Configuration loaded", "file", config.GetConfigFileUsed(), "command", cmd.Name())
	return nil
}

func newTerminal(cmd *cobra.Command, echo bool) (*render.Terminal, error) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return render.NewTerminal(cmd.OutOrStdout(), render.Options{
		Color:     !noColor && isTerminal(cmd.OutOrStdout()),
		EchoInput: echo,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func runInteractive(cmd *cobra.Command) error {
	app, err := NewApp(cmd.Context(), config.Get())
	if err != nil {
		return err
	}
	defer app.Close()

	term, err := newTerminal(cmd, false)
	if err != nil {
		return err
	}
	return headless.RunInteractive(cmd.Context(), app.Orchestrator, term, cmd.InOrStdin())
}
