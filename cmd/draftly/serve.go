package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/draftly/internal/config"
	"github.com/jackzampolin/draftly/internal/home"
	"github.com/jackzampolin/draftly/internal/logging"
	"github.com/jackzampolin/draftly/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Draftly server",
	Long: `Start the Draftly HTTP server.

Configuration is read from --config, ./config.yaml or ~/.draftly/config.yaml
and reloaded when the file changes. Provider keys are usually supplied via
OPENROUTER_API_KEY or OPENAI_API_KEY, from the environment or a .env file.

The server provides:
  - GET  /health       - Basic server health check
  - GET  /status       - Provider and grader status
  - POST /api/review   - Review an uploaded contract (multipart "file", "docType")
  - POST /api/draft    - Generate a draft .docx from a JSON request
  - GET  /api/prompts  - List prompts and overrides

Examples:
  draftly serve                    # Start on the configured port (4000)
  draftly serve --port 3000        # Start on custom port
  draftly serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		if cfgFile == "" && h.ConfigExists() {
			cfgFile = h.ConfigPath()
		}
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg := mgr.Get()

		mode, err := logging.ParseMode(cfg.Log.Mode)
		if err != nil {
			return err
		}
		logger := logging.Init(mode, cfg.Log.Format)
		mgr.SetLogger(logger)
		if f := mgr.ConfigFile(); f != "" {
			logger.Info("using config file", "path", f)
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
