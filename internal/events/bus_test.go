package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_Subscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()

	bus.Publish(NewWorkflowStarted("sess-1", "test query", 4))

	select {
	case received := <-ch:
		if received.EventType() != TypeWorkflowStarted {
			t.Errorf("expected %s, got %s", TypeWorkflowStarted, received.EventType())
		}
		if received.SessionID() != "sess-1" {
			t.Errorf("expected sess-1, got %s", received.SessionID())
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestBus_SubscribeByType(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	agentCh := bus.Subscribe(TypeAgentStatusChanged, TypeAgentProgress)
	allCh := bus.Subscribe()

	bus.Publish(NewWorkflowStarted("sess-1", "q", 2))
	bus.Publish(NewAgentStatusChanged("sess-1", "planning", "idle", "queued", ""))

	// allCh should receive both
	select {
	case <-allCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("allCh should receive workflow event")
	}
	select {
	case <-allCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("allCh should receive agent event")
	}

	// agentCh should only receive the agent event
	select {
	case received := <-agentCh:
		if received.EventType() != TypeAgentStatusChanged {
			t.Errorf("expected agent_status_changed, got %s", received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("agentCh should receive agent event")
	}
	select {
	case received := <-agentCh:
		t.Errorf("agentCh received unexpected %s", received.EventType())
	default:
	}
}

func TestBus_RingBufferDropsOldest(t *testing.T) {
	bus := New(5)
	defer bus.Close()

	ch := bus.Subscribe()

	for i := 0; i < 10; i++ {
		bus.Publish(NewAgentProgress("sess-1", "planning", float64(i*10)))
	}

	if bus.DroppedCount() == 0 {
		t.Error("expected some events to be dropped")
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received == 0 {
				t.Error("should have received at least some events")
			}
			return
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	// The channel is closed on unsubscribe.
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	// Publishing after unsubscribe is harmless.
	bus.Publish(NewWorkflowStopped("sess-1"))
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := New(100)
	defer bus.Close()

	ch := bus.Subscribe()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				bus.Publish(NewAgentProgress("sess-1", "planning", 50))
			}
		}()
	}
	wg.Wait()

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != 100 {
				t.Errorf("received %d events, want 100", received)
			}
			return
		}
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := New(10)
	ch := bus.Subscribe()
	bus.Close()

	// Publish on a closed bus is a no-op, not a panic.
	bus.Publish(NewWorkflowStarted("sess-1", "q", 1))

	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}
}
