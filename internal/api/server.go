package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/example/geniuspath/internal/database"
	"github.com/example/geniuspath/internal/review"
	"github.com/example/geniuspath/pkg/models"
)

// Server exposes the review store to the client app over HTTP
type Server struct {
	store  *review.Store
	users  *database.UserRepository
	engine *gin.Engine
}

// NewServer creates and configures a new server
func NewServer(store *review.Store, allowedOrigins []string) *Server {
	s := &Server{
		store:  store,
		users:  database.NewUserRepository(),
		engine: gin.Default(),
	}

	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.routes()
	return s
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/review/due", s.handleGetDueCards)
		v1.POST("/review/cards/:id", s.handleRecordReview)
		v1.POST("/review/lessons/:id/cards", s.handleGenerateCards)
		v1.GET("/review/stats", s.handleGetStats)
		v1.PUT("/notifications", s.handlePutNotifications)
	}
}

// handleGetDueCards returns the user's due cards plus their total card
// count. Without a user identity the result is empty, not an error.
func (s *Server) handleGetDueCards(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	c.JSON(http.StatusOK, s.store.FetchDueCards(userID))
}

// handleRecordReview applies a 0-5 quality rating to a card
func (s *Server) handleRecordReview(c *gin.Context) {
	var req struct {
		Quality *int `json:"quality" binding:"required,gte=0,lte=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "quality must be an integer between 0 and 5",
			"details": err.Error(),
		})
		return
	}

	updated := s.store.RecordReview(c.Param("id"), *req.Quality)
	if updated == nil {
		// Unknown card or a persistence failure the store absorbed; the card
		// simply stays due
		c.JSON(http.StatusOK, gin.H{"recorded": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": true, "card": updated})
}

// handleGenerateCards derives review cards from a completed lesson
func (s *Server) handleGenerateCards(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	created := s.store.GenerateCardsForLesson(userID, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// handleGetStats returns aggregate review statistics for the user
func (s *Server) handleGetStats(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	c.JSON(http.StatusOK, s.store.Statistics(userID))
}

// handlePutNotifications stores a user's reminder preferences
func (s *Server) handlePutNotifications(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user identity is required"})
		return
	}

	var req struct {
		TelegramChatID int64 `json:"telegram_chat_id"`
		Hour           *int  `json:"hour" binding:"required,gte=0,lte=23"`
		Enabled        bool  `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid notification preferences",
			"details": err.Error(),
		})
		return
	}

	user := &models.User{
		ID:                  userID,
		TelegramChatID:      req.TelegramChatID,
		NotificationEnabled: req.Enabled,
		NotificationHour:    *req.Hour,
	}
	if err := s.users.Upsert(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, user)
}
