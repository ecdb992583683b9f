package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/econlabs/growthgame/go/internal/game/events"
)

const sampleRoster = `
students:
  - Alice
  - Bob
  - Carol
teams:
  - name: Red
    members: [Alice, Bob]
  - name: Blue
    members: [Carol]
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestLoadAndStudentList(t *testing.T) {
	r, err := Load(writeRoster(t, sampleRoster))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := r.StudentList(func(name string) bool { return name == "Alice" })
	want := events.StudentListPayload{
		AllStudents:     []string{"Alice", "Bob", "Carol"},
		StudentsInTeams: []string{"Alice", "Bob", "Carol"},
		TeamInfo: []events.TeamInfo{
			{Name: "Red", Members: []string{"Alice", "Bob"}},
			{Name: "Blue", Members: []string{"Carol"}},
		},
		UnavailableCount: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("student list mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFileYieldsEmptyRoster(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := r.StudentList(nil)
	if len(got.AllStudents) != 0 || len(got.TeamInfo) != 0 || got.UnavailableCount != 0 {
		t.Fatalf("expected empty payload, got %+v", got)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	if _, err := Load(writeRoster(t, "students: {")); err == nil {
		t.Fatal("expected parse error")
	}
}
