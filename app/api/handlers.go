package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/cfg"
	"github.com/utopian-io/utbot/app/database"
)

type Handler struct {
	spec             *categories.Spec
	watermarkRepo    database.WatermarkRepository
	notificationRepo database.NotificationRepository
	startedAt        time.Time
}

func NewHandler(spec *categories.Spec, watermarkRepo database.WatermarkRepository,
	notificationRepo database.NotificationRepository) *Handler {
	return &Handler{
		spec:             spec,
		watermarkRepo:    watermarkRepo,
		notificationRepo: notificationRepo,
		startedAt:        time.Now().UTC(),
	}
}

func (h *Handler) GetRoot(c *gin.Context) {
	conf := cfg.Get()
	c.JSON(http.StatusOK, gin.H{
		"service":     "utbot",
		"version":     conf.Version,
		"description": "Notification bot for Utopian task requests and reviewed contributions",
		"account":     conf.Account,
		"call_token":  conf.CallToken(),
		"endpoints": map[string]string{
			"health": "/health",
			"stats":  "/stats",
		},
		"documentation": conf.BotRepoURL,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	}

	health["categories"] = h.spec.Count()

	if count, err := h.watermarkRepo.GetWatermarkCount(); err == nil {
		health["watermarks"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	notifications := map[string]interface{}{}
	for _, kind := range []string{"task", "contribution", "help", "missing_status"} {
		if count, err := h.notificationRepo.GetNotificationCount(kind); err == nil {
			notifications[kind] = count
		}
	}
	if total, err := h.notificationRepo.GetNotificationCount(""); err == nil {
		notifications["total"] = total
	}
	stats["notifications"] = notifications

	if count, err := h.watermarkRepo.GetWatermarkCount(); err == nil {
		stats["tracked_contributions"] = count
	}

	c.JSON(http.StatusOK, stats)
}
