package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"eoinrun/coach-bot/internal/api"
	"eoinrun/coach-bot/internal/config"
	"eoinrun/coach-bot/internal/finalsurge"
	"eoinrun/coach-bot/internal/reply"
	"eoinrun/coach-bot/internal/scheduler"
	"eoinrun/coach-bot/internal/service"
	"eoinrun/coach-bot/internal/templates"
)

func main() {
	log.Println("Starting Coach Bot...")
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		// Secrets stay out of the logs.
		if pair[0] == "AUTH_PASSWORD" || pair[0] == "GEMINI_API_KEY" {
			continue
		}
		if strings.HasPrefix(pair[0], "AUTH_") || strings.HasPrefix(pair[0], "BROADCAST_") ||
			strings.HasPrefix(pair[0], "INBOX_") || strings.HasPrefix(pair[0], "SERVER_") {
			log.Printf("ENV: %s = %s", pair[0], pair[1])
		}
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	weekday, err := cfg.Broadcast.BroadcastWeekday()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	loc, err := time.LoadLocation(cfg.Broadcast.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Could not load timezone %q: %v", cfg.Broadcast.Timezone, err)
	}

	// --- Message templates ---
	pool, err := templates.Load(cfg.Templates.File)
	if err != nil {
		log.Fatalf("FATAL: Could not load message templates: %v", err)
	}

	// --- Platform gateway & credential cache ---
	client := finalsurge.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout)
	creds := service.NewCredentialCache(client, cfg.Auth.Email, cfg.Auth.Password, cfg.Auth.TokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Scheduled actions ---
	broadcaster := service.NewBroadcaster(creds, client, pool)

	var poller *service.InboxPoller
	if cfg.Inbox.Enabled {
		decider, err := reply.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("FATAL: Could not create reply decider: %v", err)
		}
		// Messages sent before startup are never processed: the cursor
		// starts at process start time, in UTC like the platform timestamps.
		initialCursor := time.Now().UTC().Format("2006-01-02T15:04:05")
		poller = service.NewInboxPoller(creds, client, decider, initialCursor)
		log.Printf("Inbox listener enabled, polling every %s", cfg.Inbox.PollInterval)
	}

	gate := scheduler.NewGate(weekday, cfg.Broadcast.Hour, cfg.Broadcast.Minute)
	var inbox scheduler.InboxRunner
	if poller != nil {
		inbox = poller
	}
	sched := scheduler.New(gate, loc, broadcaster, inbox, cfg.Inbox.PollInterval)

	// --- Optional status server ---
	var server *http.Server
	if cfg.Server.Enabled {
		gin.SetMode(gin.ReleaseMode)
		router := gin.Default()
		var cursor api.CursorProvider
		if poller != nil {
			cursor = poller
		}
		api.SetupRoutes(router, sched, cursor)
		server = &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		go func() {
			log.Printf("Status server listening on %s", cfg.Server.Address)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("FATAL: ListenAndServe Error: %v", err)
			}
		}()
	}

	log.Printf("Scheduler started. Waiting for %s %02d:%02d (%s)...",
		cfg.Broadcast.Weekday, cfg.Broadcast.Hour, cfg.Broadcast.Minute, cfg.Broadcast.Timezone)
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("FATAL: Scheduler stopped: %v", err)
	}

	if server != nil {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Printf("ERROR: Status server forced to shutdown: %v", err)
		}
	}
	log.Println("Bot exiting.")
}
