package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"achivo/internal/app"
	"achivo/internal/config"
	"achivo/internal/infrastructure/dify"
	"achivo/internal/service"

	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "achivo",
		Short: "Goal-setting assistant backend",
		Long:  `Achivo turns a guided conversation into an ideal lifestyle, quarterly, monthly and weekly goals and daily todos.`,
		RunE:  runServe,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	checkCompletionCmd = &cobra.Command{
		Use:   "check-completion [conversation-id] [user-id]",
		Short: "Report which goal variables a conversation is still missing",
		Args:  cobra.ExactArgs(2),
		RunE:  runCheckCompletion,
	}
	saveGoalsCmd = &cobra.Command{
		Use:   "save-goals [conversation-id] [user-id]",
		Short: "Save the goal hierarchy of a complete conversation",
		Long:  `Reads the conversation variables and writes the goal hierarchy with the service credential.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runSaveGoals,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (defaults to $CONFIG_PATH or ./config/base.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCompletionCmd)
	rootCmd.AddCommand(saveGoalsCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return application.Run()
}

func runCheckCompletion(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	gateway := dify.NewClient(cfg.Dify.BaseURL, cfg.Dify.APIKey, cfg.Dify.Timeout)
	checker := service.NewCompletionChecker(gateway)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	result, err := checker.CheckComplete(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runSaveGoals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Close()

	hierarchy, err := application.ChatService().SaveGoalsFromConversation(cmd.Context(), args[1], args[0])
	if err != nil {
		return err
	}

	return printJSON(hierarchy)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
