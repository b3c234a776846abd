package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var secretKeys = []string{"token", "password", "dsn"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if used := config.GetConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# %s\n", used)
		}

		keys := viper.AllKeys()
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(out, "%s = %s\n", key, displayValue(key, viper.Get(key)))
		}

		if err := config.Get().Validate(); err != nil {
			fmt.Fprintf(out, "# %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func displayValue(key string, value any) string {
	s := fmt.Sprint(value)
	if s == "" {
		return `""`
	}
	for _, secret := range secretKeys {
		if strings.HasSuffix(key, secret) {
			return "<redacted>"
		}
	}
	return s
}
