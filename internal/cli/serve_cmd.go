package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-study-planner/internal/telegram"
	"ai-study-planner/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(a *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front-end and, when configured, the Telegram webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.Config.Port
			}
			if !a.Plans.HasCredential() {
				log.Printf("Warning: no API key configured for provider %s; plan requests will be rejected", a.Config.LLMProvider)
			}

			webServer := web.NewServer(a.Plans, a.Results, a.Metrics, a.Config.DatabasePath)
			mux := http.NewServeMux()
			mux.Handle("/", webServer.Routes())

			if a.Config.TelegramEnabled() {
				bot, err := telegram.NewBot(a.Config, a.Plans, a.Metrics)
				if err != nil {
					return fmt.Errorf("failed to initialize Telegram bot: %w", err)
				}
				bot.RegisterHandlers(mux)
			}

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           mux,
				ReadHeaderTimeout: 15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			return runServer(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (defaults to PORT)")
	return cmd
}

// runServer serves until SIGINT, SIGTERM or ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Study planner listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}
