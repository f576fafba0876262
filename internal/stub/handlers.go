// internal/stub/handlers.go
package stub

import (
	"net/http"
	"time"

	"horizon-client/internal/inventory"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type subjectRequest struct {
	SubjectID string `json:"subjectId" binding:"required"`
}

type loginRequest struct {
	SubjectID    string `json:"subjectId" binding:"required"`
	PasswordHash string `json:"passwordHash" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	ctx := c.Request.Context()

	failures, err := s.lockouts.Failures(ctx, req.SubjectID)
	if err != nil {
		s.logger.Warn("lockout store unavailable", zap.Error(err))
	}
	if failures >= int64(s.cfg.MaxAttempts) {
		remaining, _ := s.lockouts.Remaining(ctx, req.SubjectID)
		c.JSON(http.StatusLocked, gin.H{"message": lockoutMessage(int64(remaining.Seconds()))})
		return
	}

	// Attempt counting is client-driven through /record-failed-attempt, so
	// a rejected login is not counted here as well.
	if !s.users.VerifyCredential(req.SubjectID, req.PasswordHash) {
		s.logger.Info("login rejected", zap.String("subject", req.SubjectID))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	user := s.users.Find(req.SubjectID)
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to issue token"})
		return
	}

	if err := s.lockouts.Reset(ctx, req.SubjectID); err != nil {
		s.logger.Warn("failed to reset lockout counter", zap.Error(err))
	}

	s.logger.Info("login accepted", zap.String("subject", req.SubjectID), zap.String("role", user.Role))
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"token":              token,
		"mustChangePassword": user.MustChangePassword,
	})
}

type changePasswordRequest struct {
	SubjectID       string `json:"subjectId" binding:"required"`
	NewPasswordHash string `json:"newPasswordHash" binding:"required"`
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request"})
		return
	}

	if err := s.users.SetCredential(req.SubjectID, req.NewPasswordHash); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "unknown account"})
		return
	}

	s.logger.Info("password changed", zap.String("subject", req.SubjectID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCheckLockout(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	failures, err := s.lockouts.Failures(ctx, req.SubjectID)
	if err != nil {
		s.logger.Warn("lockout store unavailable", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"isLocked": false, "remainingTime": 0})
		return
	}

	locked := failures >= int64(s.cfg.MaxAttempts)
	var remainingSeconds int64
	if locked {
		remaining, _ := s.lockouts.Remaining(ctx, req.SubjectID)
		remainingSeconds = int64(remaining.Seconds())
	}
	c.JSON(http.StatusOK, gin.H{"isLocked": locked, "remainingTime": remainingSeconds})
}

func (s *Server) handleRecordFailedAttempt(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	count, err := s.lockouts.RecordFailure(c.Request.Context(), req.SubjectID)
	if err != nil {
		s.logger.Warn("failed to record attempt", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"remainingAttempts": s.cfg.MaxAttempts, "isLocked": false})
		return
	}

	remaining := int64(s.cfg.MaxAttempts) - count
	if remaining < 0 {
		remaining = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"remainingAttempts": remaining,
		"isLocked":          count >= int64(s.cfg.MaxAttempts),
	})
}

func (s *Server) handleClearFailedAttempts(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	if err := s.lockouts.Reset(c.Request.Context(), req.SubjectID); err != nil {
		s.logger.Warn("failed to clear attempts", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleGetInventory(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Payload())
}

func (s *Server) handleSaveInventory(c *gin.Context) {
	var payload inventory.RawPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
		return
	}

	s.data.Replace(payload)
	s.logger.Info("inventory replaced", zap.Int("countries", len(payload.Countries)))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleLogs is the observability sink. It accepts anything JSON-shaped and
// never fails the caller; clients fire-and-forget into it.
func (s *Server) handleLogs(c *gin.Context) {
	var event map[string]any
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusOK, gin.H{"file": ""})
		return
	}

	s.logger.Info("client event",
		zap.Any("event", event["event"]),
		zap.Any("user", event["user"]),
		zap.Any("success", event["success"]),
	)
	c.JSON(http.StatusOK, gin.H{"file": "client-" + time.Now().Format("2006-01-02") + ".log"})
}
