package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rshade/stackscale/internal/api"
)

var (
	servePort     int
	serveManifest string
	serveToken    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the synthesized template over HTTP",
	Long: `Starts a local server that re-synthesizes the manifest on every
request, so edits to the manifest are visible without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "The port to listen on")
	serveCmd.Flags().StringVarP(&serveManifest, "manifest", "m", "stack.yaml", "Path to the stack manifest")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Require this Bearer token on the template endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(api.AuthMiddleware(serveToken))
		r.Get("/template", templateHandler)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", servePort),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", servePort).Str("manifest", serveManifest).Msg("Starting stackscale server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func templateHandler(w http.ResponseWriter, r *http.Request) {
	tpl, err := synthesize(serveManifest)
	if err != nil {
		log.Error().Err(err).Msg("Synthesis failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	out, err := tpl.JSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}
