package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeProcessCommand     TaskType = "process_command"
	TaskTypeNotifyContribution TaskType = "notify_contribution"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetRef() string
	Start()
	GetDuration() time.Duration
}

// Task is the common bookkeeping shared by queued work items. Ref names
// the content item the task is about. Outbound retry is handled inside
// the notifiers; a task itself runs exactly once per dequeue.
type Task struct {
	ID        string
	Type      TaskType
	Ref       string
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetRef() string {
	return t.Ref
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, ref string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:   uniqueID,
		Type: taskType,
		Ref:  ref,
	}
}
