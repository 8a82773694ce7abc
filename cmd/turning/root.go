package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/turning/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "turning",
	Short: "Turning generates test cases from a model of states and transitions",
	Long: `Turning explores the states a model can reach, picks paths covering every transition
and replays them as test cases. Models are YAML files; their handlers are no-ops,
so the CLI checks declarations, lists test cases and draws graphs.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// cfg is loaded before every command runs.
var cfg cli.Config

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Env files to load (default: .env when present)")
	rootCmd.PersistentFlags().String("store", "", "Report store: file, memory, redis or sqlite (env TURNING_STORE)")
	rootCmd.PersistentFlags().String("store-path", "", "Report directory or database (env TURNING_STORE_PATH)")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address (env TURNING_REDIS_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	c, err := cli.LoadConfig(files...)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("store") {
		c.Store, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("store-path") {
		c.StorePath, _ = cmd.Flags().GetString("store-path")
	}
	if cmd.Flags().Changed("redis-addr") {
		c.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
	}
	cfg = c
	return nil
}
