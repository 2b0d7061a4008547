// Package jobs: последовательная очередь фоновых задач одной фичи.
// Обработчики хоткеев не блокируются: они только ставят задачу в очередь.
package jobs

import (
	"context"

	"go.uber.org/zap"
)

// Job выполняется с контекстом очереди.
type Job func(ctx context.Context)

type Queue struct {
	name   string
	ch     chan Job
	logger *zap.SugaredLogger
}

func New(name string, size int, logger *zap.SugaredLogger) *Queue {
	return &Queue{name: name, ch: make(chan Job, max(1, size)), logger: logger}
}

// Submit не блокируется. Если очередь переполнена, задача отбрасывается и возвращается false.
func (q *Queue) Submit(job Job) bool {
	select {
	case q.ch <- job:
		return true
	default:
		q.logger.Warnw("Job queue is full, job dropped", "queue", q.name)
		return false
	}
}

// Run выполняет задачи по одной до отмены контекста.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.ch:
			q.run(ctx, job)
		}
	}
}

func (q *Queue) run(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Errorw("Job panicked", "queue", q.name, "panic", r)
		}
	}()
	job(ctx)
}
