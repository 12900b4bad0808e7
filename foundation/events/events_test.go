package events_test

import (
	"testing"

	"github.com/ardanlabs/hashchain/foundation/events"
)

func Test_Hub(t *testing.T) {
	hub := events.New()

	ch1 := hub.Subscribe("one")
	ch2 := hub.Subscribe("two")

	if hub.Subscribers() != 2 {
		t.Fatalf("Should have 2 subscribers, got %d.", hub.Subscribers())
	}

	sent := hub.Publish("database: Append: started")
	if sent.Seq != 1 || sent.Source != "database" {
		t.Fatalf("Should stamp the event, got %+v.", sent)
	}

	for _, ch := range []<-chan events.Event{ch1, ch2} {
		if evt := <-ch; evt != sent {
			t.Fatalf("Should receive the event, got %+v.", evt)
		}
	}

	if err := hub.Unsubscribe("one"); err != nil {
		t.Fatalf("Should be able to unsubscribe: %s", err)
	}
	if _, open := <-ch1; open {
		t.Fatalf("Should close the unsubscribed channel.")
	}
	if err := hub.Unsubscribe("one"); err == nil {
		t.Fatalf("Should not unsubscribe an unknown id.")
	}

	// A full buffer drops events instead of blocking.
	for i := 0; i < 500; i++ {
		hub.Publish("flood")
	}

	if hub.Dropped() != 400 {
		t.Fatalf("Should count 400 dropped deliveries, got %d.", hub.Dropped())
	}

	hub.Close()
	if hub.Subscribers() != 0 {
		t.Fatalf("Should have no subscribers after close.")
	}

	var n int
	for evt := range ch2 {
		if evt.Source != "" {
			t.Fatalf("Should have no source for a message without a colon, got %q.", evt.Source)
		}
		n++
	}
	if n != 100 {
		t.Fatalf("Should have buffered 100 events, got %d.", n)
	}
}
