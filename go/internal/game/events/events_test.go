package events

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/econlabs/growthgame/go/internal/models"
)

func TestParsePayloadRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	want := RoundSummaryPayload{
		RoundNumber: 3,
		Results: []models.RoundResult{
			{PlayerName: "Alice", Investment: 10, NewCapital: 110, NewOutput: 20},
			{PlayerName: "Bob", Investment: 1, NewCapital: 101, NewOutput: 11, AutoSubmit: true},
		},
	}

	event, err := New(TypeRoundSummary, want, now)
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	if event.ID == "" || !event.Timestamp.Equal(now) {
		t.Fatalf("bad envelope: %+v", event)
	}

	got, err := ParsePayload(event)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePayloadPrivateSnapshot(t *testing.T) {
	want := StateSnapshotPayload{RoundNumber: 2, Capital: 90, Output: 12, Submitted: true, TimeRemaining: 14}

	event, err := New(TypeStateSnapshot, want, time.Now())
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	got, err := ParsePayload(event)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePayloadUnknownType(t *testing.T) {
	if _, err := ParsePayload(&Event{Type: "north_pole"}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
