// Package scheduler wraps robfig/cron with a fixed timezone location, named
// jobs, per-job timeouts, and panic recovery. The bot registers exactly one
// job (the daily delivery), but the service stays generic.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

type Config struct {
	// Timezone is an IANA name (e.g. "Africa/Cairo"). Empty means local time.
	Timezone string
}

type jobDef struct {
	name    string
	spec    string
	timeout time.Duration
	fn      func(ctx context.Context) error
	entry   cron.EntryID // valid only while the cron runner is live
}

type Service struct {
	log logx.Logger
	loc *time.Location

	mu      sync.Mutex
	c       *cron.Cron
	baseCtx context.Context
	defs    []jobDef
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("scheduler timezone %q: %w", tz, err)
		}
		loc = l
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{log: log, loc: loc}, nil
}

func (s *Service) Location() *time.Location { return s.loc }

// AddCron registers a job under name. Registering the same name again
// replaces the previous definition (upsert; avoids duplicates on re-register).
// If the service is already started the job is scheduled immediately.
func (s *Service) AddCron(name, spec string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name required")
	}
	if fn == nil {
		return errors.New("job required")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.defs {
		if s.defs[i].name == name {
			if s.c != nil {
				s.c.Remove(s.defs[i].entry)
			}
			s.defs = append(s.defs[:i], s.defs[i+1:]...)
			break
		}
	}
	s.defs = append(s.defs, jobDef{name: name, spec: spec, timeout: timeout, fn: fn})
	if s.c != nil {
		return s.scheduleLocked(len(s.defs) - 1)
	}
	return nil
}

// AddDaily registers a job that runs every day at the given local "HH:MM".
func (s *Service) AddDaily(name, atHHMM string, timeout time.Duration, fn func(ctx context.Context) error) error {
	h, m, err := ParseHHMM(atHHMM)
	if err != nil {
		return err
	}
	return s.AddCron(name, fmt.Sprintf("%d %d * * *", m, h), timeout, fn)
}

// Start schedules the registered jobs. Job contexts derive from ctx.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.baseCtx = ctx
	s.c = cron.New(cron.WithLocation(s.loc))
	for i := range s.defs {
		if err := s.scheduleLocked(i); err != nil {
			s.log.Error("schedule register failed", logx.String("name", s.defs[i].name), logx.String("spec", s.defs[i].spec), logx.Err(err))
		}
	}
	s.c.Start()
	s.log.Info("scheduler started", logx.String("tz", s.loc.String()), logx.Int("jobs", len(s.defs)))
}

func (s *Service) scheduleLocked(i int) error {
	d := s.defs[i]
	id, err := s.c.AddFunc(d.spec, func() { s.runJob(d) })
	if err != nil {
		return err
	}
	s.defs[i].entry = id
	s.log.Debug("schedule registered", logx.String("name", d.name), logx.String("spec", d.spec), logx.Duration("timeout", d.timeout))
	return nil
}

func (s *Service) runJob(d jobDef) {
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}
	if base.Err() != nil {
		return
	}

	ctx := base
	var cancel context.CancelFunc
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(base, d.timeout)
		defer cancel()
	}

	start := time.Now()
	s.log.Debug("job started", logx.String("name", d.name))
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked", logx.String("name", d.name), logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()
	if err := d.fn(ctx); err != nil {
		s.log.Warn("job failed", logx.String("name", d.name), logx.Duration("took", time.Since(start)), logx.Err(err))
		return
	}
	s.log.Debug("job finished", logx.String("name", d.name), logx.Duration("took", time.Since(start)))
}

// Stop halts scheduling and waits (bounded by ctx) for running jobs.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.baseCtx = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	done := c.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out", logx.Err(ctx.Err()))
	}
}

// ParseHHMM parses "HH:MM" (24h clock).
func ParseHHMM(v string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", v)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", v)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", v)
	}
	return hour, minute, nil
}
