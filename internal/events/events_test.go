package events

import (
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventQueryLoaded)

	bus.Publish(&QueryEvent{
		BaseEvent: BaseEvent{EventType: EventQueryLoaded, Time: time.Now()},
		View:      "home",
		Seq:       3,
		Page:      2,
		Total:     25,
		Count:     12,
	})

	select {
	case received := <-ch:
		q, ok := received.(*QueryEvent)
		if !ok {
			t.Fatal("Expected QueryEvent")
		}
		if q.View != "home" {
			t.Errorf("View = %q, want %q", q.View, "home")
		}
		if q.Seq != 3 || q.Page != 2 || q.Total != 25 {
			t.Errorf("QueryEvent = %+v, want seq 3 page 2 total 25", q)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventNotice)
	ch2 := bus.Subscribe(EventNotice)

	bus.PublishNotice(SuccessLevel, "manage", "Movie deleted.")

	received1 := false
	received2 := false

	select {
	case <-ch1:
		received1 = true
	case <-time.After(100 * time.Millisecond):
	}

	select {
	case <-ch2:
		received2 = true
	case <-time.After(100 * time.Millisecond):
	}

	if !received1 || !received2 {
		t.Error("Not all subscribers received the event")
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	loadingCh := bus.Subscribe(EventQueryLoading)
	noticeCh := bus.Subscribe(EventNotice)

	bus.Publish(&QueryEvent{
		BaseEvent: BaseEvent{EventType: EventQueryLoading, Time: time.Now()},
		View:      "search",
	})

	select {
	case <-loadingCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("Loading subscriber didn't receive event")
	}

	select {
	case <-noticeCh:
		t.Error("Notice subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.Publish(&QueryEvent{
		BaseEvent: BaseEvent{EventType: EventQueryFailed, Time: time.Now()},
		Message:   "Rate limited",
	})
	bus.PublishSession(true, "Ada", "ada@example.com", "admin")

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			count++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if count != 2 {
		t.Errorf("Expected to receive 2 events, got %d", count)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventNotice)

	for i := 0; i < 10; i++ {
		bus.PublishNotice(InfoLevel, "home", "tick")
	}

	if got := bus.GetDroppedEventCount(); got != 8 {
		t.Errorf("GetDroppedEventCount() = %d, want 8", got)
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			goto done
		}
	}
done:

	if count != 2 {
		t.Errorf("received %d events, want 2", count)
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventNotice)

	bus.Close()

	_, ok := <-ch
	if ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.PublishNotice(ErrorLevel, "home", "late")

	// Subscribing after close yields a closed channel
	if _, ok := <-bus.Subscribe(EventNotice); ok {
		t.Error("Subscribe after Close should return a closed channel")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSessionChanged)
	bus.Unsubscribe(EventSessionChanged, ch)

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after Unsubscribe")
	}

	// Publishing with no subscribers must not count drops
	bus.PublishSession(false, "", "", "")
	if got := bus.GetDroppedEventCount(); got != 0 {
		t.Errorf("GetDroppedEventCount() = %d, want 0", got)
	}

	all := bus.SubscribeAll()
	bus.UnsubscribeAll(all)
	if _, ok := <-all; ok {
		t.Error("Channel should be closed after UnsubscribeAll")
	}
}

func TestNoticeLevel_String(t *testing.T) {
	tests := []struct {
		level    NoticeLevel
		expected string
	}{
		{InfoLevel, "INFO"},
		{SuccessLevel, "SUCCESS"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{NoticeLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level %d: expected %s, got %s", tt.level, tt.expected, got)
		}
	}
}

func TestConvenienceMethods(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	noticeCh := bus.Subscribe(EventNotice)
	sessionCh := bus.Subscribe(EventSessionChanged)

	bus.PublishNotice(WarnLevel, "login", "Please enter email and password.")

	select {
	case event := <-noticeCh:
		n, ok := event.(*NoticeEvent)
		if !ok {
			t.Fatal("Expected NoticeEvent")
		}
		if n.Message != "Please enter email and password." || n.Level != WarnLevel {
			t.Errorf("NoticeEvent = %+v", n)
		}
		if n.Timestamp().IsZero() {
			t.Error("NoticeEvent timestamp should be set")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for notice event")
	}

	bus.PublishSession(true, "Ada", "ada@example.com", "admin")

	select {
	case event := <-sessionCh:
		s, ok := event.(*SessionEvent)
		if !ok {
			t.Fatal("Expected SessionEvent")
		}
		if !s.SignedIn || s.Role != "admin" {
			t.Errorf("SessionEvent = %+v, want signed-in admin", s)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for session event")
	}
}
