package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/filescout/pkg/criteria"
	"github.com/sdejongh/filescout/pkg/dupes"
	"github.com/sdejongh/filescout/pkg/grep"
	"github.com/sdejongh/filescout/pkg/ignore"
	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/mask"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/ratelimit"
	"github.com/sdejongh/filescout/pkg/walker"
)

const (
	defaultRedrawInterval = 500 * time.Millisecond
	defaultRedrawBatch    = 100
)

// Session is one run of the engine. A single worker goroutine does all the
// work; other goroutines may read Results, receive Updates and call Stop.
type Session struct {
	id     string
	engine *Engine
	cfg    *EngineConfig
	roots  []models.SearchRoot
	rules  []ignore.Rule

	log     *logging.Collector
	results *ResultList
	status  *statusChannel
	redraw  *redrawThrottle
	walk    *walker.Walker

	stopped atomic.Bool
	started atomic.Bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	done   chan struct{}
	report *models.SearchReport
	err    error

	bytesHashed int64
	groups      int64
}

func newSession(e *Engine, cfg *EngineConfig, roots []models.SearchRoot) *Session {
	id := uuid.NewString()

	opts := cfg.Options
	if opts.RedrawInterval <= 0 {
		opts.RedrawInterval = defaultRedrawInterval
	}
	if opts.RedrawBatch <= 0 {
		opts.RedrawBatch = defaultRedrawBatch
	}

	return &Session{
		id:      id,
		engine:  e,
		cfg:     cfg,
		roots:   roots,
		rules:   append([]ignore.Rule(nil), cfg.Ignore...),
		log:     logging.NewCollector(e.logger.WithFields(logging.Fields{"session_id": id}), opts.LogLimit),
		results: NewResultList(opts.MaxResults),
		status:  newStatusChannel(),
		redraw:  newRedrawThrottle(opts.RedrawInterval, opts.RedrawBatch),
		done:    make(chan struct{}),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Results returns the live result list
func (s *Session) Results() *ResultList {
	return s.results
}

// Updates returns the status channel. It is closed when the worker ends.
func (s *Session) Updates() <-chan StatusUpdate {
	return s.status.ch
}

// Start launches the worker goroutine
func (s *Session) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	go func() {
		defer cancel()
		s.run(ctx)
	}()
	return nil
}

// Stop asks the worker to finish as soon as possible. Results found so far
// are kept and the session ends with status stopped.
func (s *Session) Stop() {
	s.stopped.Store(true)
	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancelMu.Unlock()
}

// Stopped reports whether Stop was called
func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

// Wait blocks until the worker ends and returns its report
func (s *Session) Wait() *models.SearchReport {
	<-s.done
	return s.report
}

// Run starts the session and waits for it. Updates are discarded unless
// another goroutine reads them.
func (s *Session) Run(ctx context.Context) (*models.SearchReport, error) {
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	report := s.Wait()
	if report.Status == models.StatusFailed {
		return report, fmt.Errorf("search %s failed: %w", s.id, s.err)
	}
	return report, nil
}

func (s *Session) run(ctx context.Context) {
	report := &models.SearchReport{
		SessionID: s.id,
		Mode:      s.cfg.Mode,
		StartTime: time.Now(),
		Status:    models.StatusRunning,
	}
	for _, r := range s.roots {
		report.Roots = append(report.Roots, r.Path)
	}

	defer func() {
		if s.redraw.flush() {
			s.send(StatusUpdate{Percent: -1, Redraw: true})
		}
		s.finish(ctx, report)
		s.report = report
		s.status.close()
		close(s.done)
	}()

	s.log.Info(ctx, "search started", logging.Fields{"mode": string(s.cfg.Mode), "roots": len(s.roots)})

	err := s.execute(ctx)

	switch {
	case err == nil && ctx.Err() == nil:
		report.Status = models.StatusCompleted
	case s.stopped.Load() || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || (err == nil && ctx.Err() != nil):
		report.Status = models.StatusStopped
	default:
		report.Status = models.StatusFailed
		report.Error = err.Error()
		s.err = err
		s.log.Error(ctx, "search failed", err, nil)
	}
}

func (s *Session) finish(ctx context.Context, report *models.SearchReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	if s.walk != nil {
		s.walk.Stats().Fill(&report.Stats)
	}
	report.Stats.Matches = int64(s.results.Len())
	report.Stats.BytesHashed = s.bytesHashed
	report.Stats.Groups = s.groups

	s.log.Info(ctx, "search finished", logging.Fields{
		"status":   string(report.Status),
		"duration": report.Duration.String(),
		"matches":  report.Stats.Matches,
	})
	report.Stats.Errors = s.log.ErrorCount()
	report.Log = s.log.Entries()
}

// execute prepares the filters and runs the mode
func (s *Session) execute(ctx context.Context) error {
	limiter := ratelimit.NewLimiter(s.cfg.Options.ReadLimit)
	if limiter != nil {
		s.log.Debug(ctx, "content reads throttled", logging.Fields{"bytes_per_second": limiter.BytesPerSecond()})
	}

	var content walker.ContentTester
	if s.cfg.Pattern != nil {
		m, err := grep.Compile(*s.cfg.Pattern, grep.Options{
			WindowSize:    s.cfg.Options.WindowSize,
			MaxLineLength: s.cfg.Options.MaxLineLength,
			Limiter:       limiter,
			Logger:        s.log,
		})
		if err != nil {
			return err
		}
		content = m
	}

	crit := s.cfg.Criteria
	crit.Prepare(time.Now())

	s.walk = walker.New(s.engine.backend, walker.Options{
		Criteria:    &crit,
		Content:     content,
		Ignore:      ignore.Prepare(s.rules),
		Logger:      s.log,
		Status:      func(path string) { s.send(StatusUpdate{Path: path, Percent: -1}) },
		MaxDeferred: s.cfg.Options.MaxDeferred,
	})

	switch s.cfg.Mode {
	case models.ModeIntersect, models.ModeSubtract:
		return s.refine(ctx, &crit, content)
	case models.ModeDuplicates:
		return s.findDuplicates(ctx, limiter)
	default:
		return s.walkRoots(ctx, func(f models.MatchedFile) error {
			return s.add(models.Result{MatchedFile: f})
		})
	}
}

// walkRoots walks every root in order with one walker
func (s *Session) walkRoots(ctx context.Context, emit walker.EmitFunc) error {
	for _, root := range s.roots {
		m, err := mask.Parse(root.Mask)
		if err != nil {
			return err
		}
		if ok, err := s.engine.backend.Exists(ctx, root.Path); err == nil && !ok {
			s.log.Info(ctx, "search root not found", logging.Path(root.Path))
			continue
		}
		if err := s.walk.Walk(ctx, root, m, emit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) findDuplicates(ctx context.Context, limiter *ratelimit.Limiter) error {
	detector, err := dupes.New(s.cfg.Duplicates, dupes.Options{
		Hash:       s.cfg.Options.HashAlgorithm,
		BufferSize: s.cfg.Options.HashBufferSize,
		Limiter:    limiter,
		Logger:     s.log,
		Progress: func(path string, percent int) {
			s.send(StatusUpdate{Path: path, Percent: percent})
		},
	})
	if err != nil {
		return err
	}

	walkErr := s.walkRoots(ctx, detector.Add)
	if walkErr != nil && ctx.Err() == nil {
		return walkErr
	}

	s.log.Info(ctx, "examining duplicate candidates", logging.Fields{"candidates": detector.Len()})
	list, stats, examineErr := detector.Examine(ctx)
	s.bytesHashed = stats.BytesHashed
	s.groups = stats.Groups

	for i := range list {
		c := &list[i]
		r := models.Result{MatchedFile: c.File, Alternation: c.Alternation()}
		if g, ok := c.Group(); ok {
			r.Group = &g
		}
		if d, ok := c.Digest(); ok && s.cfg.Duplicates.ByContent {
			r.Digest = d.String()
		}
		if err := s.add(r); err != nil {
			return err
		}
	}

	if walkErr != nil {
		return walkErr
	}
	return examineErr
}

// refine re-tests the previous results with the criteria, the first
// root's mask and the content pattern
func (s *Session) refine(ctx context.Context, crit *criteria.Criteria, content walker.ContentTester) error {
	m := mask.MustParse("*")
	if len(s.roots) > 0 {
		var err error
		if m, err = mask.Parse(s.roots[0].Mask); err != nil {
			return err
		}
	}

	keep := s.cfg.Mode == models.ModeIntersect
	total := len(s.cfg.Previous)

	for i, f := range s.cfg.Previous {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := f.Path()
		u := StatusUpdate{Path: path, Percent: -1}
		if content == nil {
			u.Percent = i * 100 / total
		}
		s.send(u)

		matched := crit.Test(f.Attributes, f.Size, f.ModTime) && m.Matches(f.Name)
		if matched && content != nil {
			matched = !f.IsDir && content.Matches(ctx, path, f.Size, f.IsLink())
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if matched == keep {
			if err := s.add(models.Result{MatchedFile: f}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) add(r models.Result) error {
	if err := s.results.Add(r); err != nil {
		s.log.Error(context.Background(), "cannot add result", err, logging.Path(r.Path()))
		return err
	}
	if s.redraw.added() {
		s.send(StatusUpdate{Path: r.Path(), Percent: -1, Redraw: true})
	}
	return nil
}

func (s *Session) send(u StatusUpdate) {
	u.Results = s.results.Len()
	s.status.send(u)
}
