package audit

import (
	"context"
	"log"
	"sync"

	"connex/internal/config"
	"connex/internal/domain"
	"connex/internal/repo"
)

// Store is the slice of the entity store the recorder writes through.
type Store interface {
	AppendAction(ctx context.Context, a domain.Action) (domain.Action, error)
	CountActions(ctx context.Context, f repo.ActionFilter) (int, error)
}

const defaultQueueSize = 256

type job struct {
	ctx context.Context
	req Request
}

// Recorder persists actions. Record is synchronous and returns errors; Emit is
// fire-and-forget and only logs them.
type Recorder struct {
	store     Store
	logger    *log.Logger
	firstOnly bool
	async     bool
	queue     chan job
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func New(store Store, cfg *config.Config, logger *log.Logger) *Recorder {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Recorder{
		store:     store,
		logger:    logger,
		firstOnly: cfg.Audit.Recompletion == config.RecompletionFirstOnly,
		async:     cfg.Audit.Async,
		done:      make(chan struct{}),
	}
	if r.async {
		size := cfg.Audit.QueueSize
		if size <= 0 {
			size = defaultQueueSize
		}
		r.queue = make(chan job, size)
		go r.run()
	} else {
		close(r.done)
	}
	return r
}

// Record builds and appends an action for req.
func (r *Recorder) Record(ctx context.Context, req Request) (domain.Action, error) {
	a, err := Build(req)
	if err != nil {
		return domain.Action{}, err
	}
	return r.store.AppendAction(ctx, a)
}

// Emit records req without reporting failure to the caller. Completion
// actions are skipped under the first_only policy when one already exists
// for the same entity.
func (r *Recorder) Emit(ctx context.Context, req Request) {
	ctx = context.WithoutCancel(ctx)
	if !r.async {
		r.write(ctx, req)
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Printf("audit: recorder closed, dropping %s action", req.Type)
		return
	}
	select {
	case r.queue <- job{ctx: ctx, req: req}:
	default:
		r.logger.Printf("audit: queue full, dropping %s action for project %s", req.Type, req.ProjectID)
	}
}

// Close stops accepting actions and waits for queued ones to be written.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		if !r.async {
			return
		}
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for j := range r.queue {
		r.write(j.ctx, j.req)
	}
}

func (r *Recorder) write(ctx context.Context, req Request) {
	if r.firstOnly {
		seen, err := r.alreadyCompleted(ctx, req)
		if err != nil {
			r.logger.Printf("audit: %v", domain.Audit("check prior completion", err))
			return
		}
		if seen {
			return
		}
	}
	if _, err := r.Record(ctx, req); err != nil {
		r.logger.Printf("audit: %v", domain.Audit("record "+req.Type, err))
	}
}

func (r *Recorder) alreadyCompleted(ctx context.Context, req Request) (bool, error) {
	var f repo.ActionFilter
	switch {
	case req.Type == domain.ActionTaskCompleted && req.TaskID != "":
		f = repo.ActionFilter{Type: req.Type, TaskID: req.TaskID}
	case req.Type == domain.ActionMeetingCompleted && req.MeetingID != "":
		f = repo.ActionFilter{Type: req.Type, MeetingID: req.MeetingID}
	default:
		return false, nil
	}
	n, err := r.store.CountActions(ctx, f)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
