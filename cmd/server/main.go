package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hirekit/internal/ai"
	"go-hirekit/internal/autoapply"
	"go-hirekit/internal/browser"
	"go-hirekit/internal/chat"
	"go-hirekit/internal/config"
	"go-hirekit/internal/database"
	"go-hirekit/internal/jobs"
	"go-hirekit/internal/models"
	"go-hirekit/internal/quota"
	"go-hirekit/internal/reporter"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	//connect database
	repo, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer repo.Close()
	log.Println("🗄️ Database connected.")

	//browser manager is shared and lazily launched; pages are per-call
	pages := browser.NewManager(cfg.BrowserPoolSize, cfg.BrowserHeadless)
	defer pages.Close()

	//optional telegram notifications
	var notifier autoapply.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("❌ Failed to init Telegram reporter: %v", err)
		}
		notifier = tg
		log.Println("🤖 Telegram reporter initialized.")
	}

	//llm fallback chain, fixed priority order
	llm := ai.NewFallbackClient(
		ai.NewGeminiProvider(cfg.GeminiAPIKey),
		ai.NewAnthropicProvider(cfg.AnthropicAPIKey),
		ai.NewOpenAIProvider(cfg.OpenAIAPIKey),
	)

	gate := quota.NewGate(repo)
	generator := ai.NewGenerator(llm)
	searcher := jobs.NewClient(cfg.AdzunaAppID, cfg.AdzunaAppKey)
	pipeline := autoapply.NewPipeline(pages, repo, notifier)
	dispatcher := chat.NewDispatcher(repo, repo, searcher, generator, pipeline, gate)
	orchestrator := chat.NewOrchestrator(llm, dispatcher, repo, gate, repo)

	r := gin.Default()

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/chat", func(c *gin.Context) {
		var req chat.TurnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		resp, err := orchestrator.Turn(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Message required"})
				return
			}
			log.Printf("❌ Chat turn failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Something went wrong. Try again!",
				"action":  chat.ActionNone,
				"result":  nil,
			})
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	r.POST("/api/apply", func(c *gin.Context) {
		var req struct {
			JobURL   string `json:"jobUrl"`
			JobTitle string `json:"jobTitle"`
			Company  string `json:"company"`
			UserID   string `json:"userId"`
			Profile  struct {
				Name     string `json:"name"`
				Email    string `json:"email"`
				Phone    string `json:"phone"`
				Location string `json:"location"`
			} `json:"profile"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.JobURL == "" || req.JobTitle == "" ||
			req.Company == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "jobUrl, jobTitle, company, userId, and profile required",
			})
			return
		}

		outcome := pipeline.Apply(c.Request.Context(), autoapply.Input{
			JobURL:   req.JobURL,
			JobTitle: req.JobTitle,
			Company:  req.Company,
			UserID:   req.UserID,
			Profile: autoapply.FormProfile{
				Name:     req.Profile.Name,
				Email:    req.Profile.Email,
				Phone:    req.Profile.Phone,
				Location: req.Profile.Location,
			},
		})
		c.JSON(http.StatusOK, outcome)
	})

	r.GET("/api/chat/sessions", func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
			return
		}
		sessions, err := repo.ListChatSessions(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	})

	r.DELETE("/api/chat/sessions/:id", func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
			return
		}
		if err := repo.DeleteChatSession(c.Request.Context(), userID, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	})

	r.GET("/api/apply/track", func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
			return
		}
		apps, err := repo.ListApplications(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"applications": apps})
	})

	r.PATCH("/api/apply/:id", func(c *gin.Context) {
		var req struct {
			Status models.ApplicationStatus `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || !models.ValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "valid status required"})
			return
		}
		if err := repo.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true})
	})

	log.Printf("🚀 HireKit server listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
