package downloader

import (
	"testing"

	"github.com/cesargomez89/synqed/internal/domain"
)

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub(4)
	ch, unsubscribe := h.Subscribe()

	h.Publish(domain.Event{Name: domain.EventProgress})

	ev := <-ch
	if ev.Name != domain.EventProgress {
		t.Errorf("Expected %s, got %s", domain.EventProgress, ev.Name)
	}

	unsubscribe()
	unsubscribe()
	if h.Subscribers() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", h.Subscribers())
	}
	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after unsubscribe")
	}

	// Publishing with no subscribers must not panic
	h.Publish(domain.Event{Name: domain.EventError})
}

func TestHub_DropsWhenFull(t *testing.T) {
	h := NewHub(1)
	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	h.Publish(domain.Event{Name: "first"})
	h.Publish(domain.Event{Name: "second"})

	ev := <-ch
	if ev.Name != "first" {
		t.Errorf("Expected first event to be kept, got %s", ev.Name)
	}
	select {
	case ev := <-ch:
		t.Errorf("Expected overflow to be dropped, got %s", ev.Name)
	default:
	}
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	MultiSink{a, b}.Publish(domain.Event{Name: "x"})
	if len(a.byName("x")) != 1 || len(b.byName("x")) != 1 {
		t.Error("Expected event to reach every sink")
	}
}
