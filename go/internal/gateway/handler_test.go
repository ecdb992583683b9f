package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/econlabs/growthgame/go/internal/game/events"
)

type coordinatorCall struct {
	Method string
	ConnID string
	Name   string
	Amount float64
	Auto   bool
	Flag   bool
}

type fakeCoordinator struct {
	calls []coordinatorCall
	err   error
	panic bool
}

func (f *fakeCoordinator) record(call coordinatorCall) {
	f.calls = append(f.calls, call)
}

func (f *fakeCoordinator) CreateGame() error {
	if f.panic {
		panic("boom")
	}
	f.record(coordinatorCall{Method: "CreateGame"})
	return f.err
}

func (f *fakeCoordinator) SetManualStart(enabled bool) error {
	f.record(coordinatorCall{Method: "SetManualStart", Flag: enabled})
	return f.err
}

func (f *fakeCoordinator) StartGame() error {
	f.record(coordinatorCall{Method: "StartGame"})
	return f.err
}

func (f *fakeCoordinator) ForceEnd() error {
	f.record(coordinatorCall{Method: "ForceEnd"})
	return f.err
}

func (f *fakeCoordinator) Join(name, connID string) error {
	f.record(coordinatorCall{Method: "Join", Name: name, ConnID: connID})
	return f.err
}

func (f *fakeCoordinator) Reconnect(name, connID string) error {
	f.record(coordinatorCall{Method: "Reconnect", Name: name, ConnID: connID})
	return f.err
}

func (f *fakeCoordinator) Release(connID string) {
	f.record(coordinatorCall{Method: "Release", ConnID: connID})
}

func (f *fakeCoordinator) SubmitInvestment(connID string, amount float64, autoSubmit bool) error {
	f.record(coordinatorCall{Method: "SubmitInvestment", ConnID: connID, Amount: amount, Auto: autoSubmit})
	return f.err
}

func (f *fakeCoordinator) StudentList(connID string) {
	f.record(coordinatorCall{Method: "StudentList", ConnID: connID})
}

func newTestHandler(coordinator *fakeCoordinator) (*SessionHandler, *ConnectionManager, clockwork.Clock) {
	manager := NewConnectionManager(DefaultConnectionConfig())
	clock := clockwork.NewFakeClock()
	return NewSessionHandler(manager, coordinator, clock), manager, clock
}

// queuedError pops a queued direct message off the broadcast channel and
// decodes it as an error event.
func queuedError(t *testing.T, manager *ConnectionManager) (events.ErrorPayload, *events.Event) {
	t.Helper()
	select {
	case message := <-manager.broadcastCh:
		if message.Event.Type != events.TypeError {
			t.Fatalf("expected error event, got %s", message.Event.Type)
		}
		var payload events.ErrorPayload
		if err := json.Unmarshal(message.Event.Data, &payload); err != nil {
			t.Fatalf("decode error payload: %v", err)
		}
		return payload, message.Event
	default:
		t.Fatal("no event queued")
		return events.ErrorPayload{}, nil
	}
}

func TestHandleMessageDispatch(t *testing.T) {
	coordinator := &fakeCoordinator{}
	handler, _, _ := newTestHandler(coordinator)
	conn := &Connection{ID: "conn-1", Audience: events.AudiencePlayers}

	messages := []string{
		`{"type":"create_game"}`,
		`{"type":"set_manual_start","data":{"enabled":true}}`,
		`{"type":"join_game","data":{"player_name":"Alice"}}`,
		`{"type":"reconnect_game","data":{"player_name":"Alice"}}`,
		`{"type":"start_game"}`,
		`{"type":"submit_investment","data":{"investment":12.5,"auto_submit":true}}`,
		`{"type":"get_student_list"}`,
		`{"type":"force_end_game"}`,
	}
	for _, raw := range messages {
		handler.HandleMessage(conn, []byte(raw))
	}

	want := []coordinatorCall{
		{Method: "CreateGame"},
		{Method: "SetManualStart", Flag: true},
		{Method: "Join", Name: "Alice", ConnID: "conn-1"},
		{Method: "Reconnect", Name: "Alice", ConnID: "conn-1"},
		{Method: "StartGame"},
		{Method: "SubmitInvestment", ConnID: "conn-1", Amount: 12.5, Auto: true},
		{Method: "StudentList", ConnID: "conn-1"},
		{Method: "ForceEnd"},
	}
	if diff := cmp.Diff(want, coordinator.calls); diff != "" {
		t.Fatalf("coordinator calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleMessageMalformed(t *testing.T) {
	coordinator := &fakeCoordinator{}
	handler, manager, clock := newTestHandler(coordinator)
	conn := &Connection{ID: "conn-1", Audience: events.AudiencePlayers}

	handler.HandleMessage(conn, []byte(`{"type":"no_such_command"}`))

	if len(coordinator.calls) != 0 {
		t.Fatalf("unknown command reached the coordinator: %+v", coordinator.calls)
	}
	payload, event := queuedError(t, manager)
	if payload.Message != "malformed command" {
		t.Fatalf("unexpected error message %q", payload.Message)
	}
	if !event.Timestamp.Equal(clock.Now()) {
		t.Fatalf("error event stamped %v, want clock time %v", event.Timestamp, clock.Now())
	}
}

func TestHandleMessageRecoversFromPanic(t *testing.T) {
	coordinator := &fakeCoordinator{panic: true}
	handler, manager, _ := newTestHandler(coordinator)
	conn := &Connection{ID: "conn-1", Audience: events.AudienceInstructor}

	handler.HandleMessage(conn, []byte(`{"type":"create_game"}`))

	if payload, _ := queuedError(t, manager); payload.Message != "internal server error" {
		t.Fatalf("unexpected error message %q", payload.Message)
	}
}

func TestHandleDisconnectReleasesPlayer(t *testing.T) {
	coordinator := &fakeCoordinator{}
	handler, _, _ := newTestHandler(coordinator)
	conn := &Connection{ID: "conn-1", Audience: events.AudiencePlayers}

	handler.HandleDisconnect(conn)
	want := []coordinatorCall{{Method: "Release", ConnID: "conn-1"}}
	if diff := cmp.Diff(want, coordinator.calls); diff != "" {
		t.Fatalf("coordinator calls mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		role string
		want events.Audience
		ok   bool
	}{
		{"player", events.AudiencePlayers, true},
		{"", events.AudiencePlayers, true},
		{"screen", events.AudienceScreens, true},
		{"instructor", events.AudienceInstructor, true},
		{"spectator", "", false},
	}
	for _, tc := range cases {
		got, ok := parseRole(tc.role)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseRole(%q) = %q, %v; want %q, %v", tc.role, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHandleConnectionRejectsUnknownRole(t *testing.T) {
	handler, _, _ := newTestHandler(&fakeCoordinator{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/ws?role=spectator", nil)
	handler.HandleConnection(recorder, request)

	if recorder.Code != 400 {
		t.Fatalf("expected 400 for unknown role, got %d", recorder.Code)
	}
}

func TestStatsEmptyManager(t *testing.T) {
	handler, _, _ := newTestHandler(&fakeCoordinator{})

	recorder := httptest.NewRecorder()
	handler.HandleStats(recorder, httptest.NewRequest("GET", "/ws/stats", nil))

	var stats map[string]int
	if err := json.Unmarshal(recorder.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["total"] != 0 {
		t.Fatalf("expected empty manager, got %+v", stats)
	}
}
