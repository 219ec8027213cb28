package app

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
)

// JobStatus is the last known outcome of a scheduled job.
type JobStatus struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	LastStart time.Time `json:"last_start,omitempty"`
	LastEnd   time.Time `json:"last_end,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler runs named jobs on cron specs. Overlapping runs of the same job
// are skipped and panics are recovered.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logging.Logger
	timeout time.Duration
	now     func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	status map[string]*JobStatus
}

// NewScheduler builds a scheduler whose runs are each bounded by timeout.
func NewScheduler(timeout time.Duration, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler")

	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
		ctx:     context.Background(),
		status:  make(map[string]*JobStatus),
	}
}

// Add registers fn under name. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name, "reason", "empty schedule")
		return nil
	}

	s.mu.Lock()
	if _, exists := s.status[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("job %s already registered", name)
	}
	s.status[name] = &JobStatus{Name: name, Spec: spec}
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		s.mu.Lock()
		delete(s.status, name)
		s.mu.Unlock()
		return fmt.Errorf("schedule job %s (%q): %w", name, spec, err)
	}
	return nil
}

// Start begins firing jobs. Runs derive their context from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop stops firing new runs and waits up to wait for running ones.
func (s *Scheduler) Stop(wait time.Duration) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(wait):
		s.logger.Warn("scheduler stop timed out with jobs still running", "wait", wait)
	}
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	base := s.ctx
	st := s.status[name]
	st.LastStart = s.now()
	s.mu.Unlock()

	ctx := base
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, s.timeout)
		defer cancel()
	}

	err := fn(ctx)

	s.mu.Lock()
	st.Runs++
	st.LastEnd = s.now()
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
	elapsed := st.LastEnd.Sub(st.LastStart)
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", name, "elapsed", elapsed, "error", err)
		return
	}
	s.logger.DebugContext(ctx, "job finished", "job", name, "elapsed", elapsed)
}

// Snapshot returns every registered job ordered by name.
func (s *Scheduler) Snapshot() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// StatusHandler serves Snapshot as JSON.
func (s *Scheduler) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body, err := sonic.Marshal(s.Snapshot())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}

// cronLogger adapts the service logger to cron's logging interface.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
