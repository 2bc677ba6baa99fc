// Package dispatch runs chat jobs in arrival order per chat while different
// chats proceed in parallel.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

var (
	ErrClosed      = errors.New("dispatcher closed")
	ErrMailboxFull = errors.New("chat mailbox full")
)

// Job is one unit of work for a chat. The context is the dispatcher's base
// context.
type Job func(ctx context.Context)

// Dispatcher owns one worker goroutine per active chat. A worker exits after
// its mailbox has been empty for the idle period.
type Dispatcher struct {
	ctx  context.Context
	size int
	idle time.Duration

	mu        sync.Mutex
	mailboxes map[int64]chan Job
	closed    bool
	wg        sync.WaitGroup
}

func New(ctx context.Context, size int, idle time.Duration) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		ctx:       ctx,
		size:      size,
		idle:      idle,
		mailboxes: make(map[int64]chan Job),
	}
}

// Submit queues job behind the pending jobs of chatID. It never blocks.
func (d *Dispatcher) Submit(chatID int64, job Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	mb, ok := d.mailboxes[chatID]
	if !ok {
		mb = make(chan Job, d.size)
		d.mailboxes[chatID] = mb
		d.wg.Add(1)
		go d.run(chatID, mb)
	}

	select {
	case mb <- job:
		return nil
	default:
		slog.Warn("chat mailbox full, dropping update", "chat_id", chatID)
		return ErrMailboxFull
	}
}

// Close stops accepting jobs and waits until every queued job has run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, mb := range d.mailboxes {
			close(mb)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Active returns the number of chats with a live worker.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mailboxes)
}

func (d *Dispatcher) run(chatID int64, mb chan Job) {
	defer d.wg.Done()

	timer := time.NewTimer(d.idle)
	defer timer.Stop()

	for {
		select {
		case job, ok := <-mb:
			if !ok {
				return
			}
			d.exec(chatID, job)
			timer.Reset(d.idle)
		case <-timer.C:
			if d.retire(chatID, mb) {
				return
			}
			timer.Reset(d.idle)
		}
	}
}

// retire removes an idle mailbox. Sends happen under the same lock, so an
// empty mailbox stays empty once it is unlinked.
func (d *Dispatcher) retire(chatID int64, mb chan Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || len(mb) > 0 {
		return false
	}
	delete(d.mailboxes, chatID)
	slog.Debug("chat worker idle, stopping", "chat_id", chatID)
	return true
}

func (d *Dispatcher) exec(chatID int64, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in chat job",
				"chat_id", chatID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	job(d.ctx)
}
