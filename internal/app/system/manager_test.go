package system

import (
	"context"
	"errors"
	"testing"
)

type recordingService struct {
	name    string
	fail    bool
	started bool
	stopped bool
	order   *[]string
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(context.Context) error {
	if s.fail {
		return errors.New("boom")
	}
	s.started = true
	*s.order = append(*s.order, "start:"+s.name)
	return nil
}

func (s *recordingService) Stop(context.Context) error {
	s.stopped = true
	*s.order = append(*s.order, "stop:"+s.name)
	return nil
}

func TestManagerStartStopOrder(t *testing.T) {
	var order []string
	a := &recordingService{name: "a", order: &order}
	b := &recordingService{name: "b", order: &order}

	m := NewManager()
	if err := m.Register(a); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := m.Register(b); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if err := m.Register(&recordingService{name: "a", order: &order}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestManagerStartFailureUnwinds(t *testing.T) {
	var order []string
	a := &recordingService{name: "a", order: &order}
	b := &recordingService{name: "b", fail: true, order: &order}

	m := NewManager()
	_ = m.Register(a)
	_ = m.Register(b)

	if err := m.Start(context.Background()); err == nil {
		t.Fatalf("expected start to fail")
	}
	if !a.stopped {
		t.Fatalf("expected already-started service to be stopped")
	}
}
