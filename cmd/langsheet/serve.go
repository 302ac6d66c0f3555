package main

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/server"
)

var (
	serveHost string
	servePort string
	serveLive bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the langsheet session server",
	Long: `Start the langsheet HTTP server.

Sessions are kept in memory and expire after server.session_ttl without use.
Uploaded spreadsheets are stored under ~/.langsheet/uploads/<session>.

The server provides:
  - /health                       - Basic server health check
  - /api/sessions                 - Create a session
  - /api/sessions/{id}/...        - Load, map, preview and export

Examples:
  langsheet serve                    # Start on the configured port (8080)
  langsheet serve --port 3000        # Start on custom port
  langsheet serve --host 0.0.0.0     # Bind to all interfaces
  langsheet serve --watch-config     # Reload session defaults on config edits`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := loadEnv(true)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.home.EnsureExists(); err != nil {
			return err
		}
		if serveLive {
			e.config.WatchConfig()
		}

		cfg := e.config.Get()
		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(server.Config{
			ConfigManager: e.config,
			Home:          e.home,
			Logger:        e.logger,
			Addr:          net.JoinHostPort(host, port),
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to (overrides server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveLive, "watch-config", false, "Reload the config file when it changes")

	rootCmd.AddCommand(serveCmd)
}
