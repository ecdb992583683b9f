package game

import "testing"

func TestRegistryBindAndResolve(t *testing.T) {
	r := NewRegistry()
	if superseded := r.Bind("alice", "conn-1"); superseded != "" {
		t.Fatalf("fresh bind reported superseded handle %q", superseded)
	}
	if name, ok := r.NameFor("conn-1"); !ok || name != "alice" {
		t.Fatalf("NameFor(conn-1) = %q, %v", name, ok)
	}
	if connID, ok := r.ConnFor("alice"); !ok || connID != "conn-1" {
		t.Fatalf("ConnFor(alice) = %q, %v", connID, ok)
	}
}

func TestRegistrySupersede(t *testing.T) {
	r := NewRegistry()
	r.Bind("alice", "conn-1")
	if superseded := r.Bind("alice", "conn-2"); superseded != "conn-1" {
		t.Fatalf("expected conn-1 superseded, got %q", superseded)
	}
	if _, ok := r.NameFor("conn-1"); ok {
		t.Fatal("stale handle still resolves")
	}
	if connID, _ := r.ConnFor("alice"); connID != "conn-2" {
		t.Fatalf("ConnFor(alice) = %q, want conn-2", connID)
	}

	// Rebinding the same handle is a no-op, not a supersede.
	if superseded := r.Bind("alice", "conn-2"); superseded != "" {
		t.Fatalf("idempotent rebind reported superseded handle %q", superseded)
	}
}

func TestRegistryReleaseStaleHandle(t *testing.T) {
	r := NewRegistry()
	r.Bind("alice", "conn-1")
	r.Bind("alice", "conn-2")

	// The superseded handle owns nothing anymore.
	if name, ok := r.Release("conn-1"); ok {
		t.Fatalf("stale release returned %q", name)
	}
	if name, ok := r.Release("conn-2"); !ok || name != "alice" {
		t.Fatalf("Release(conn-2) = %q, %v", name, ok)
	}
	if _, ok := r.ConnFor("alice"); ok {
		t.Fatal("name still bound after release")
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()
	r.Bind("alice", "conn-1")
	r.Bind("bob", "conn-2")
	r.Reset()
	if _, ok := r.NameFor("conn-1"); ok {
		t.Fatal("binding survived reset")
	}
	if _, ok := r.ConnFor("bob"); ok {
		t.Fatal("binding survived reset")
	}
}
