package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"celengan/internal/amqp"
	"celengan/internal/chat"
	"celengan/internal/chat/gemini"
	"celengan/internal/cli"
	apphttp "celengan/internal/http"
	"celengan/internal/services"
	"celengan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	st := cli.OpenStore(logger, cfg)
	defer st.Close()

	// Gemini is optional: without it only command keywords work in chat.
	var parser chat.IntentParser = chat.FallbackParser{}
	if cfg.GeminiAPIKey != "" {
		p, err := gemini.New(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Error("Failed to initialize Gemini parser", "error", err)
			os.Exit(1)
		}
		parser = p
		logger.Info("Gemini intent parser initialized", "model", gemini.DefaultModel)
	} else {
		logger.Info("Gemini disabled - no GEMINI_API_KEY provided")
	}

	// AMQP is optional too: when the broker is unreachable replies are
	// delivered inline instead of queued.
	var replies apphttp.ReplyPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, falling back to direct reply delivery", "error", err)
	} else {
		defer amqpClient.Close()
		replies = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	telegram, whatsapp := cli.MessengerSenders(logger, cfg)
	directReplies := worker.NewReplyWorker(telegram, whatsapp, cfg.DeliveryTimeout)

	balances := services.NewBalanceService(st)
	dashboards := services.NewDashboardService(st)
	chatHandler := chat.NewHandler(st, balances, parser)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		Store:           st,
		Balances:        balances,
		Dashboards:      dashboards,
		Chat:            chatHandler,
		Replies:         replies,
		DirectReplies:   directReplies,
		MetaVerifyToken: cfg.MetaWebhookVerifyToken,
		CacheTTL:        cfg.DashboardCacheTTL,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting celengan server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
