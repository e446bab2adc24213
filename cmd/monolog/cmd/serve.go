/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/monologreader/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Start the read-only REST API server",
	Long: `Index a log file and serve its records over a read-only REST API.

Endpoints:
  GET /api/v1/health
  GET /api/v1/records?offset=0&limit=100&level=ERROR&from=...&to=...
  GET /api/v1/records/{index}
  GET /api/v1/stats
  GET /metrics

Examples:
  monolog serve app.log
  monolog serve app.log --bind 0.0.0.0 --port 9000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := sessionFrom(cmd)
		if err != nil {
			return err
		}

		// Flags override config only when set
		if cmd.Flags().Changed("bind") {
			rt.config.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("port") {
			rt.config.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		r, err := openReader(rt, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		serverConfig := api.ServerConfig{
			Bind: rt.config.Server.Bind,
			Port: rt.config.Server.Port,
			File: filepath.Base(args[0]),
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d records from %s on http://%s\n", r.Count(), args[0], rt.config.Addr())
		if err := starter.StartServer(ctx, r, serverConfig, rt.logger); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}

