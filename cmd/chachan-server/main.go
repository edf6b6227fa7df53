package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/DataShades/chachan"
	"github.com/DataShades/chachan/transport"
)

type config struct {
	Addr         string        `default:":3000"`
	Namespace    string        `default:"chachan/chat"`
	LogLevel     string        `split_words:"true" default:"info"`
	PingInterval time.Duration `split_words:"true" default:"54s"`
	PongTimeout  time.Duration `split_words:"true" default:"60s"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	var cfg config
	if err := envconfig.Process("chachan", &cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	srv := transport.NewServer(&transport.Config{
		PingInterval: cfg.PingInterval,
		PongTimeout:  cfg.PongTimeout,
		WriteTimeout: 10 * time.Second,
		MaxPayload:   1 << 20,
	})

	chat := chachan.NewChat(srv.Of(cfg.Namespace), nil)
	chat.OnError(func(s *transport.Socket, err error) {
		slog.Error("pipeline fault", "sid", s.ID(), "error", err)
	})
	chat.Start()

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/rooms", roomsHandler(chat))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr, "namespace", cfg.Namespace)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func roomsHandler(chat *chachan.Chat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chat.ListMembers(nil))
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
