package domain

// Stats is the admin overview of the installation
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	GuestUsers     int64 `json:"guest_users"`
	NewUsersWeek   int64 `json:"new_users_week"`
	TotalToDos     int64 `json:"total_todos"`
	SharedToDos    int64 `json:"shared_todos"`
	TotalTasks     int64 `json:"total_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
	TasksToday     int64 `json:"tasks_today"`
	Notifications  int64 `json:"pending_notifications"`
	CommentsWeek   int64 `json:"comments_week"`
}
