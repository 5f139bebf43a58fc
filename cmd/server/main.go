// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/moodtunes/moodtunes/internal/api/rest"
	"github.com/moodtunes/moodtunes/internal/app/archive"
	"github.com/moodtunes/moodtunes/internal/app/auth"
	"github.com/moodtunes/moodtunes/internal/app/gateway"
	"github.com/moodtunes/moodtunes/internal/app/insights"
	"github.com/moodtunes/moodtunes/internal/app/player"
	"github.com/moodtunes/moodtunes/internal/domain/mood"
	"github.com/moodtunes/moodtunes/internal/infra/config"
	"github.com/moodtunes/moodtunes/internal/infra/genai"
	"github.com/moodtunes/moodtunes/internal/infra/logger"
	"github.com/moodtunes/moodtunes/internal/infra/store"
)

var (
	app        = kingpin.New("moodtunes-server", "MoodTunes mood station server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-moods command
	listMoodsCmd = app.Command("list-moods", "List available moods and exit")
)

func init() {
	// start command (default)
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listMoodsCmd.FullCommand() {
		printMoods()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		File:   "",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	st, err := store.New(afero.NewOsFs(), cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	genaiClient, err := genai.New(genai.Config{
		APIKey:  cfg.GenAI.APIKey,
		BaseURL: cfg.GenAI.BaseURL,
		Timeout: time.Duration(cfg.GenAI.TimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	gw, err := gateway.New(genaiClient, cfg.Gateway.Settings)
	if err != nil {
		return fmt.Errorf("failed to create recommendation gateway: %w", err)
	}

	authMgr := auth.NewManager(st)
	recorder := insights.NewRecorder(st)
	controller := player.NewController(gw, recorder)
	defer controller.Close()
	archiveMgr := archive.NewManager(st)

	// Drain controller events into the log so the stream never backs up.
	go func() {
		for e := range controller.Events() {
			zlog.Debug().Msgf("player event: %s", e.Type)
		}
	}()

	handler := rest.NewHandler(authMgr, controller, recorder, archiveMgr, genaiClient, cfg.Chat.Model)

	serverAddr := cfg.Server.Addr
	// h2c lets HTTP/2 clients connect without TLS
	server := &http.Server{
		Addr:    serverAddr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// printMoods prints the available moods.
func printMoods() {
	fmt.Println("Available Moods:")
	for _, m := range mood.All() {
		fmt.Printf("  %-14s - %s [genre: %s]\n", m, m.Description(), m.DefaultGenre())
	}
}
