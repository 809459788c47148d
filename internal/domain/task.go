package domain

import "time"

// TaskPriority orders the operations backlog.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskStatus is pending until someone works the task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

// OperationalTask is a follow-up for warehouse or office staff.
type OperationalTask struct {
	ID         string       `json:"id"`
	CustomerID string       `json:"customerId,omitempty"`
	VisitID    string       `json:"visitId,omitempty"`
	Priority   TaskPriority `json:"priority"`
	Action     string       `json:"action"`
	DueDate    time.Time    `json:"dueDate"`
	Status     TaskStatus   `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}
