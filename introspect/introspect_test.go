package introspect

import (
	"testing"
	"time"

	"github.com/sailfishos/mce-ledind/bus"
)

func TestService_Publish_SendsRetainedSnapshot(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(topicState)

	svc := New(conn, time.Hour)
	svc.Publish(Snapshot{Winner: "ringing"})

	select {
	case msg := <-sub.Channel():
		snap, ok := msg.Payload.(Snapshot)
		if !ok || snap.Winner != "ringing" {
			t.Fatalf("unexpected payload: %#v", msg.Payload)
		}
		if !msg.Retained {
			t.Fatal("expected introspection state to publish retained")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func TestService_Publish_EachCallReflectsItsOwnSnapshot(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(topicState)

	svc := New(conn, time.Hour)
	svc.Publish(Snapshot{Winner: "none"})
	<-sub.Channel()

	svc.Publish(Snapshot{Winner: "missed_call"})

	select {
	case msg := <-sub.Channel():
		snap := msg.Payload.(Snapshot)
		if snap.Winner != "missed_call" {
			t.Fatalf("expected second publish to reflect new winner, got %q", snap.Winner)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second publish")
	}
}

func TestNew_DefaultsNonPositiveInterval(t *testing.T) {
	svc := New(nil, 0)
	if svc.Interval() != 5*time.Second {
		t.Fatalf("expected default interval of 5s, got %v", svc.Interval())
	}
}
