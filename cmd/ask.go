package cmd

import (
	"strings"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/headless"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, prompt string) error {
	app, err := NewApp(cmd.Context(), config.Get())
	if err != nil {
		return err
	}
	defer app.Close()

	term, err := newTerminal(cmd, true)
	if err != nil {
		return err
	}
	return headless.RunHeadless(cmd.Context(), app.Orchestrator, term, strings.TrimSpace(prompt))
}
