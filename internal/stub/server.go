// internal/stub/server.go
package stub

import (
	"fmt"
	"net/http"
	"strings"

	"horizon-client/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server is the local development backend. It implements exactly the wire
// shapes the Horizon client consumes; the production backend remains the
// source of truth for anything beyond those.
type Server struct {
	cfg      config.StubConfig
	engine   *gin.Engine
	logger   *zap.Logger
	users    *UserStore
	lockouts LockoutStore
	tokens   *TokenIssuer
	data     *InventoryStore
}

func NewServer(cfg config.StubConfig, logger *zap.Logger) (*Server, error) {
	users, err := LoadUsers(cfg.SeedUsersPath)
	if err != nil {
		return nil, err
	}
	data, err := LoadInventory(cfg.InventoryPath)
	if err != nil {
		return nil, err
	}

	var lockouts LockoutStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		lockouts = NewRedisLockoutStore(client, cfg.LockoutWindow)
		logger.Info("lockout store backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		lockouts = NewMemoryLockoutStore(cfg.LockoutWindow)
	}

	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		logger:   logger,
		users:    users,
		lockouts: lockouts,
		tokens:   NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		data:     data,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s, nil
}

// Engine exposes the router for tests and for embedding in httptest servers.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run() error {
	s.logger.Info("stub backend listening", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

func (s *Server) routes() {
	s.engine.POST("/login", s.handleLogin)
	s.engine.POST("/change-password", s.handleChangePassword)
	s.engine.POST("/check-lockout", s.handleCheckLockout)
	s.engine.POST("/record-failed-attempt", s.handleRecordFailedAttempt)
	s.engine.POST("/logs", s.handleLogs)

	authorized := s.engine.Group("/")
	authorized.Use(s.requireBearer())
	{
		authorized.POST("/clear-failed-attempts", s.handleClearFailedAttempts)
		authorized.GET("/data/inventory", s.handleGetInventory)
		authorized.POST("/data/save", s.handleSaveInventory)
	}
}

// requireBearer validates the Authorization header the client always sends.
// An empty bearer (logged-out client) fails here like any bad token.
func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		subject, err := s.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}
		c.Set("subject", subject)
		c.Next()
	}
}

func lockoutMessage(remaining int64) string {
	minutes := remaining / 60
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Account locked. Try again in %d minute(s).", minutes)
}
