// Package rewinder шагает перемотку по таймеру, пока удерживается комбо.
package rewinder

import (
	"context"
	"sync"
	"time"

	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/rewind"

	"go.uber.org/zap"
)

type Rewinder struct {
	parent context.Context
	exec   *rewind.Executor
	tick   time.Duration
	logger *zap.SugaredLogger

	mu         sync.Mutex
	cancelPrev context.CancelFunc
	done       chan struct{}
	gen        int64
}

// New создаёт перемотчик. Циклы перемотки живут не дольше parent.
func New(parent context.Context, exec *rewind.Executor, tick time.Duration, logger *zap.SugaredLogger) *Rewinder {
	if tick <= 0 {
		tick = 40 * time.Millisecond
	}
	return &Rewinder{parent: parent, exec: exec, tick: tick, logger: logger}
}

// Register привязывает rewind_start и rewind_stop.
func (r *Rewinder) Register(d *hotkey.Dispatcher) error {
	if err := d.Register(hotkey.RewindStart, func(hotkey.Event) { r.Start() }); err != nil {
		return err
	}
	return d.Register(hotkey.RewindStop, func(hotkey.Event) { r.Stop() })
}

// Start запускает цикл шагов. Повторный вызов во время перемотки ничего не делает.
func (r *Rewinder) Start() {
	if !r.exec.Start() {
		return
	}
	ctx, cancel := context.WithCancel(r.parent)
	done := make(chan struct{})

	r.mu.Lock()
	r.gen++
	localGen := r.gen
	r.cancelPrev, r.done = cancel, done
	r.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			cancel()
			r.mu.Lock()
			if r.gen == localGen {
				r.cancelPrev, r.done = nil, nil
			}
			r.mu.Unlock()
		}()
		r.loop(ctx)
	}()
}

func (r *Rewinder) loop(ctx context.Context) {
	// первый шаг сразу, дальше по таймеру
	if r.exec.Step() != rewind.Stepped {
		return
	}
	t := time.NewTicker(r.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.exec.Stop()
			return
		case <-t.C:
			if r.exec.Step() != rewind.Stepped {
				return
			}
		}
	}
}

// Stop останавливает перемотку и ждёт выхода цикла.
func (r *Rewinder) Stop() {
	r.exec.Stop()
	r.mu.Lock()
	cancel, done := r.cancelPrev, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
