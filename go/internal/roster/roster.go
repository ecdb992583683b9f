package roster

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/econlabs/growthgame/go/internal/game/events"
)

// Roster is the class list the instructor configured before the session. It is
// read-only input; team administration happens outside this server.
type Roster struct {
	Students []string `yaml:"students"`
	Teams    []Team   `yaml:"teams"`
}

// Team groups roster students for the instructor's display.
type Team struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// Load reads a roster YAML file. A missing file yields an empty roster: the
// feature is optional for a session.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Roster{}, nil
		}
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}
	return &r, nil
}

// StudentList shapes the roster into a student_list payload. taken reports
// whether a student name is already claimed by a connected player.
func (r *Roster) StudentList(taken func(name string) bool) events.StudentListPayload {
	inTeams := make([]string, 0)
	seen := make(map[string]bool)
	teamInfo := make([]events.TeamInfo, 0, len(r.Teams))
	for _, team := range r.Teams {
		teamInfo = append(teamInfo, events.TeamInfo{
			Name:    team.Name,
			Members: append([]string(nil), team.Members...),
		})
		for _, member := range team.Members {
			if !seen[member] {
				seen[member] = true
				inTeams = append(inTeams, member)
			}
		}
	}
	sort.Strings(inTeams)

	unavailable := 0
	if taken != nil {
		for _, name := range r.Students {
			if taken(name) {
				unavailable++
			}
		}
	}

	return events.StudentListPayload{
		AllStudents:      append([]string(nil), r.Students...),
		StudentsInTeams:  inTeams,
		TeamInfo:         teamInfo,
		UnavailableCount: unavailable,
	}
}
