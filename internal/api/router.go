package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/MedValidator/internal/db"
	"github.com/Skufu/MedValidator/internal/ocr"
	"github.com/Skufu/MedValidator/internal/triage"
)

type Options struct {
	Logger       zerolog.Logger
	DB           db.HealthChecker
	Chat         *triage.Store
	OCR          ocr.Extractor
	CORSOrigins  []string
	MaxBodyBytes int64
}

// NewRouter wires every route. A nil DB reports the database as disabled and
// a nil OCR extractor turns the image endpoint off.
func NewRouter(opts Options) *gin.Engine {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.Chat == nil {
		opts.Chat = triage.NewStore(triage.NewAssistant(triage.RandomPicker{}))
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(opts.Logger),
		recovery(opts.Logger),
		limitBodySize(opts.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readyHandler(opts.DB))

	h := &handlers{logger: opts.Logger, chat: opts.Chat, ocr: opts.OCR}

	rx := router.Group("/api/prescriptions")
	rx.POST("/parse", h.parsePrescription)
	rx.POST("/validate", h.validatePrescription)
	rx.POST("/ocr", h.ocrPrescription)

	chat := router.Group("/api/chat/sessions")
	chat.POST("", h.createSession)
	chat.GET("/:id", h.getSession)
	chat.DELETE("/:id", h.deleteSession)
	chat.POST("/:id/messages", h.sendMessage)

	return router
}

func readyHandler(checker db.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := checker.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	}
}
