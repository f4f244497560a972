package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth  = "auth"
	AuditCategoryToDo  = "todo"
	AuditCategoryAdmin = "admin"
)

// Audit actions
const (
	// Auth actions
	AuditActionLogin    = "login"
	AuditActionLogout   = "logout"
	AuditActionRegister = "register"
	AuditActionOAuth    = "oauth_login"

	// ToDo actions
	AuditActionToDoDelete         = "todo_delete"
	AuditActionCollaboratorAdd    = "collaborator_add"
	AuditActionCollaboratorRemove = "collaborator_remove"

	// Admin actions
	AuditActionAdminDeleteUser = "admin_delete_user"
	AuditActionAdminSetRole    = "admin_set_role"
	AuditActionAdminBroadcast  = "admin_broadcast"
)
