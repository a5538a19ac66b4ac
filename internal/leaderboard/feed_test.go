package leaderboard

import (
	"testing"
)

func TestFeedDeliversLatestOnSubscribe(t *testing.T) {
	f := NewFeed()
	f.Publish([]Entry{{PlayerID: "a", Score: 1}})

	sub := f.Subscribe()
	defer sub.Cancel()

	select {
	case got := <-sub.C:
		if len(got) != 1 || got[0].PlayerID != "a" {
			t.Errorf("unexpected snapshot %+v", got)
		}
	default:
		t.Fatal("expected an immediate snapshot for a late subscriber")
	}
}

func TestFeedPublishSkipsUnchanged(t *testing.T) {
	f := NewFeed()
	list := []Entry{{PlayerID: "a", Score: 1}}

	if !f.Publish(list) {
		t.Fatal("first publish should be delivered")
	}
	if f.Publish([]Entry{{PlayerID: "a", Score: 1}}) {
		t.Error("identical publish should be skipped")
	}
	if !f.Publish([]Entry{{PlayerID: "a", Score: 2}}) {
		t.Error("changed publish should be delivered")
	}
}

func TestFeedSlowSubscriberSeesOnlyLatest(t *testing.T) {
	f := NewFeed()
	sub := f.Subscribe()
	defer sub.Cancel()

	for i := 1; i <= 5; i++ {
		f.Publish([]Entry{{PlayerID: "a", Score: i}})
	}

	got := <-sub.C
	if got[0].Score != 5 {
		t.Errorf("expected latest score 5, got %d", got[0].Score)
	}
	select {
	case extra := <-sub.C:
		t.Errorf("expected a single pending snapshot, got another %+v", extra)
	default:
	}
}

func TestFeedSnapshotsAreIsolated(t *testing.T) {
	f := NewFeed()
	list := []Entry{{PlayerID: "a", Score: 1}}
	f.Publish(list)

	list[0].Score = 99
	latest := f.Latest()
	if latest[0].Score != 1 {
		t.Error("mutating the published slice must not change the feed")
	}

	latest[0].Score = 42
	if f.Latest()[0].Score != 1 {
		t.Error("mutating a delivered snapshot must not change the feed")
	}
}

func TestFeedCancel(t *testing.T) {
	f := NewFeed()
	sub := f.Subscribe()

	if f.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, expected 1", f.Subscribers())
	}

	sub.Cancel()
	sub.Cancel() // idempotent

	if f.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after cancel, expected 0", f.Subscribers())
	}
	if _, ok := <-sub.C; ok {
		t.Error("channel should be closed after cancel")
	}

	// Publishing after cancel must not panic
	f.Publish([]Entry{{PlayerID: "a"}})
}
