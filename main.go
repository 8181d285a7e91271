package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foresight_backend/core"
	"foresight_backend/logging"
	"foresight_backend/webui"
	"foresight_backend/webui/auth"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Note: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	logger, err := logging.NewLogger(isDevelopment, core.GetEnvOrDefault("LOG_FILE", "app.log"))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	config, err := core.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", config.Provider),
		zap.String("primary_model", config.PrimaryModel),
		zap.String("fallback_model", config.FallbackModel),
		zap.Int64("max_file_size", config.MaxFileSize),
		zap.Int("max_corpus_chars", config.MaxCorpusChars),
		zap.Int("max_retries", config.MaxRetries),
		zap.Duration("analysis_timeout", config.AnalysisTimeout),
		zap.Duration("generation_timeout", config.GenerationTimeout),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Optional web UI password gate
	var authProvider webui.AuthProvider
	if config.WebUIPassword != "" {
		mw, err := auth.NewMiddleware(config.WebUIPassword, auth.DefaultCookieConfig(), logger.Zap())
		if err != nil {
			logger.Fatal("Failed to initialize auth", zap.Error(err))
		}
		authProvider = mw
	}

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Port = config.Port
	serverConfig.Host = config.Host
	serverConfig.SessionTTL = config.SessionTTL

	server := webui.NewServer(serverConfig, config, authProvider, logger.Zap())

	printBanner(config, server.Addr(), authProvider != nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal. Shutting down...")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("Shutdown error", zap.Error(err))
		}
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("Goodbye!")
}

// printBanner writes the startup summary to the terminal.
func printBanner(config *core.Config, addr string, authEnabled bool) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	value := color.New(color.FgGreen)

	title.Println("Foresight Appendix Generator")
	label.Print("  Address:   ")
	value.Printf("http://%s\n", addr)
	label.Print("  Provider:  ")
	value.Println(config.Provider)
	label.Print("  Model:     ")
	value.Printf("%s (fallback: %s)\n", config.PrimaryModel, config.FallbackModel)
	label.Print("  Auth:      ")
	if authEnabled {
		value.Println("password required")
	} else {
		color.New(color.FgYellow).Println("open (set WEBUI_PWD to protect)")
	}
	if config.APIKey() == "" {
		color.New(color.FgYellow).Println("  No API key configured; supply one via POST /api/credential")
	}
}
