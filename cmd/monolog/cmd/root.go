/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/config"
	"github.com/ssargent/monologreader/pkg/di"
	"github.com/ssargent/monologreader/pkg/logging"
	"github.com/ssargent/monologreader/pkg/reader"
)

type contextKey string

const sessionKey contextKey = "session"

// session is the state shared by all subcommands, built once per invocation
type session struct {
	config  *config.Config
	logger  *logging.Logger
	decoder *codec.Decoder
}

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "monolog",
	Short: "Monolog log reader",
	Long: `monolog reads Monolog formatted log files ("[date] channel.LEVEL: message context extra")
without loading them into memory. Multi-line records such as stack traces are kept whole.

Files ending in .gz, .zst or .lz4 are decompressed on the fly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadSession(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), sessionKey, rt))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default is ~/.config/monolog/config.yaml when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadSession resolves the configuration, applies flag overrides and builds
// the logger and decoder.
func loadSession(cmd *cobra.Command) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Format, level)
	if err != nil {
		return nil, err
	}

	decoder, err := cfg.Decoder()
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}

	return &session{config: cfg, logger: logger, decoder: decoder}, nil
}

func sessionFrom(cmd *cobra.Command) (*session, error) {
	rt, ok := cmd.Context().Value(sessionKey).(*session)
	if !ok {
		return nil, fmt.Errorf("session not initialized")
	}
	return rt, nil
}

// openReader opens path with the configured decoder and logger.
func openReader(rt *session, path string) (*reader.LogReader, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	open := container.GetReaderOpener()
	return open(path,
		reader.WithDecoder(rt.decoder),
		reader.WithLogger(rt.logger.WithFile(path)),
		reader.WithCheckpointEvery(rt.config.Source.CheckpointEvery),
	)
}
