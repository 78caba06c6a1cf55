package scheduler

import (
	"context"
	"testing"
	"time"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

func TestParseHHMM(t *testing.T) {
	good := []struct {
		in   string
		h, m int
	}{
		{"05:00", 5, 0},
		{"00:00", 0, 0},
		{"23:59", 23, 59},
		{" 9:30 ", 9, 30},
	}
	for _, c := range good {
		h, m, err := ParseHHMM(c.in)
		if err != nil {
			t.Errorf("ParseHHMM(%q): %v", c.in, err)
			continue
		}
		if h != c.h || m != c.m {
			t.Errorf("ParseHHMM(%q) = %d:%d, want %d:%d", c.in, h, m, c.h, c.m)
		}
	}

	bad := []string{"", "5", "24:00", "12:60", "-1:00", "aa:bb", "12:", "12:00:00x"}
	for _, in := range bad {
		if _, _, err := ParseHHMM(in); err == nil {
			t.Errorf("ParseHHMM(%q) accepted, want error", in)
		}
	}
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	if _, err := New(Config{Timezone: "Mars/Olympus"}, logx.Nop()); err == nil {
		t.Fatal("unknown timezone must fail")
	}
	s, err := New(Config{Timezone: "Africa/Cairo"}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Location().String() != "Africa/Cairo" {
		t.Fatalf("Location = %s", s.Location())
	}
}

func TestAddDailyValidation(t *testing.T) {
	s, err := New(Config{}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	noop := func(context.Context) error { return nil }

	if err := s.AddDaily("job", "25:00", 0, noop); err == nil {
		t.Fatal("bad time must be rejected")
	}
	if err := s.AddDaily("", "05:00", 0, noop); err == nil {
		t.Fatal("empty name must be rejected")
	}
	if err := s.AddDaily("job", "05:00", 0, nil); err == nil {
		t.Fatal("nil job must be rejected")
	}
	if err := s.AddDaily("job", "05:00", 0, noop); err != nil {
		t.Fatalf("AddDaily: %v", err)
	}
	// Re-registering replaces, it never duplicates.
	if err := s.AddDaily("job", "06:30", 0, noop); err != nil {
		t.Fatalf("AddDaily upsert: %v", err)
	}
	if len(s.defs) != 1 {
		t.Fatalf("defs = %d, want 1", len(s.defs))
	}
	if s.defs[0].spec != "30 6 * * *" {
		t.Fatalf("spec = %q, want %q", s.defs[0].spec, "30 6 * * *")
	}
}

func TestJobRunsWithTimeoutContext(t *testing.T) {
	s, err := New(Config{}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ran := make(chan error, 1)
	err = s.AddCron("tick", "* * * * *", time.Minute, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		if !ok {
			ran <- context.DeadlineExceeded
		} else {
			ran <- nil
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	// Trigger directly instead of waiting for the next minute boundary.
	s.runJob(s.defs[0])
	select {
	case err := <-ran:
		if err != nil {
			t.Fatal("job context must carry the configured deadline")
		}
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}
