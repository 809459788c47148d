package scheduler

import (
	"encoding/json"
	"time"

	"storeroom_backend/internal/domain"

	"github.com/hibiken/asynq"
)

const TaskRecordOpsTask = "ops.task.record"

const TaskVisitReminder = "visits.reminder"

type OpsTaskPayload struct {
	CustomerID string              `json:"customerId,omitempty"`
	VisitID    string              `json:"visitId,omitempty"`
	Priority   domain.TaskPriority `json:"priority"`
	Action     string              `json:"action"`
	DueDate    time.Time           `json:"dueDate"`
}

type VisitReminderPayload struct {
	VisitID    string `json:"visitId"`
	CustomerID string `json:"customerId"`
}

func NewOpsTaskTask(task domain.OperationalTask) (*asynq.Task, error) {
	data, err := json.Marshal(OpsTaskPayload{
		CustomerID: task.CustomerID,
		VisitID:    task.VisitID,
		Priority:   task.Priority,
		Action:     task.Action,
		DueDate:    task.DueDate,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordOpsTask, data, asynq.MaxRetry(5)), nil
}

func ParseOpsTaskPayload(task *asynq.Task) (domain.OperationalTask, error) {
	var payload OpsTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return domain.OperationalTask{}, err
	}
	return domain.OperationalTask{
		CustomerID: payload.CustomerID,
		VisitID:    payload.VisitID,
		Priority:   payload.Priority,
		Action:     payload.Action,
		DueDate:    payload.DueDate,
	}, nil
}

func NewVisitReminderTask(payload VisitReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVisitReminder, data), nil
}

func ParseVisitReminderPayload(task *asynq.Task) (VisitReminderPayload, error) {
	var payload VisitReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return VisitReminderPayload{}, err
	}
	return payload, nil
}
