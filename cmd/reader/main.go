package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"readerapp/internal/app"
	"readerapp/internal/config"
	"readerapp/internal/server"
	"readerapp/internal/util"
	"readerapp/pkg/ai"
	"readerapp/pkg/book"
	"readerapp/pkg/chatlog"
	"readerapp/pkg/notify"
	"readerapp/pkg/prefs"
	"readerapp/pkg/speech"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := loadDocument(ctx, cfg)
	if err != nil {
		fatal("failed to load document", err)
	}
	slog.Info("document loaded", "title", doc.Title, "pages", doc.TotalPages)

	prefStore, err := buildPrefStore(cfg)
	if err != nil {
		fatal("failed to init preference store", err)
	}

	logStore, err := buildChatLog(cfg)
	if err != nil {
		fatal("failed to init conversation log", err)
	}

	generator, err := ai.NewOpenRouterGenerator(ai.OpenRouterConfig{
		BaseURL:   cfg.GenerationBaseURL,
		APIKey:    cfg.GenerationAPIKey,
		Model:     cfg.GenerationModel,
		Referer:   cfg.GenerationReferer,
		AppTitle:  cfg.AppTitle,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		fatal("failed to init generator", err)
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		fatal("failed to init notifier", err)
	}
	defer notifier.Close()

	session, err := app.NewSession(ctx, doc, prefStore, nil)
	if err != nil {
		fatal("failed to init session", err)
	}
	pipeline := app.NewPipeline(session, logStore, generator, notifier)

	var engine speech.Engine = speech.UnsupportedEngine{}
	if cfg.SpeechEngineURL != "" {
		engine = speech.NewStreamEngine(cfg.SpeechEngineURL)
	}
	recorder := speech.NewRecorder(engine, pipeline.AdoptTranscript)

	httpServer := server.New(server.Config{
		Session:  session,
		Pipeline: pipeline,
		Recorder: recorder,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		// Generation requests can take a while; the write timeout has to
		// cover the full chat round trip.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("reader server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		recorder.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func loadDocument(ctx context.Context, cfg config.FileConfig) (*book.Document, error) {
	var src book.Source
	var err error
	if cfg.DocumentPath != "" {
		src, err = book.NewFileSource(cfg.DocumentPath)
	} else {
		src, err = book.NewObjectSource(
			cfg.ObjectEndpoint, cfg.ObjectAccess, cfg.ObjectSecret,
			cfg.ObjectBucket, cfg.ObjectKey, cfg.ObjectUseSSL,
		)
	}
	if err != nil {
		return nil, err
	}
	return book.Load(ctx, src)
}

func buildPrefStore(cfg config.FileConfig) (prefs.Store, error) {
	switch {
	case cfg.RedisAddr != "":
		return prefs.NewRedisStore(prefs.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case cfg.PrefsDir != "":
		return prefs.NewFileStore(cfg.PrefsDir)
	default:
		slog.Warn("no preference store configured, position and bookmarks will not survive restarts")
		return prefs.NewMemoryStore(), nil
	}
}

func buildChatLog(cfg config.FileConfig) (chatlog.Store, error) {
	if cfg.DatabaseURL != "" {
		return chatlog.NewGormStore(cfg.DatabaseURL)
	}
	slog.Warn("no database configured, conversation log will not survive restarts")
	return chatlog.NewMemoryStore(), nil
}

func buildNotifier(cfg config.FileConfig) (notify.Notifier, error) {
	if cfg.AMQPURL != "" {
		return notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
	}
	return notify.NopNotifier{}, nil
}
