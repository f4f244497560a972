package service

import (
	"context"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// AuditService handles audit logging
type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged, never returned.
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, "", "", details)
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}

	entry := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.WithContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogLogin logs a password or oauth login
func (s *AuditService) LogLogin(ctx context.Context, userID int64, provider, ip, userAgent string) {
	action := domain.AuditActionLogin
	var details map[string]interface{}
	if provider != "" {
		action = domain.AuditActionOAuth
		details = map[string]interface{}{"provider": provider}
	}
	s.LogWithRequest(ctx, userID, action, domain.AuditCategoryAuth, ip, userAgent, details)
}

// LogCollaborator logs a collaborator being added or removed by actorID
func (s *AuditService) LogCollaborator(ctx context.Context, actorID, todoID, userID int64, added bool) {
	action := domain.AuditActionCollaboratorRemove
	if added {
		action = domain.AuditActionCollaboratorAdd
	}
	s.Log(ctx, actorID, action, domain.AuditCategoryToDo, map[string]interface{}{
		"todo_id": todoID,
		"user_id": userID,
	})
}

// LogAdminAction logs an admin action
func (s *AuditService) LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID int64, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID
	details["target_user_id"] = targetUserID

	s.Log(ctx, adminID, action, domain.AuditCategoryAdmin, details)
}

// GetRecentLogs returns recent audit logs, optionally filtered by category
func (s *AuditService) GetRecentLogs(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListRecent(ctx, category, limit)
}
