// Package api is the optional read-only status server: liveness, scheduler
// watermarks and prometheus metrics. It exposes no mutating operation.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eoinrun/coach-bot/internal/scheduler"
)

// StatusProvider reports the scheduler watermarks.
type StatusProvider interface {
	Status() scheduler.Status
}

// CursorProvider reports the inbox cursor watermark. Nil when the inbox
// listener is disabled.
type CursorProvider interface {
	Cursor() string
}

func SetupRoutes(router *gin.Engine, status StatusProvider, cursor CursorProvider) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/status", func(c *gin.Context) {
		snapshot := status.Status()
		payload := gin.H{
			"gate_state":    snapshot.GateState,
			"retry_pending": snapshot.RetryPending,
			"next_fire":     snapshot.NextFire,
		}
		if !snapshot.LastPass.IsZero() {
			payload["last_pass"] = snapshot.LastPass
		}
		if !snapshot.LastPoll.IsZero() {
			payload["last_poll"] = snapshot.LastPoll
		}
		if cursor != nil {
			payload["inbox_cursor"] = cursor.Cursor()
		}
		c.JSON(http.StatusOK, payload)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
