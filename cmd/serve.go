package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/logger"
	"github.com/killallgit/cortex-chat/pkg/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat as a single web page",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		app, err := NewApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := server.NewHTTPServer(cfg.Server.Addr, app.Orchestrator)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.Server.Addr)

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.WithComponent("cmd").Error("Failed to stop server", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
