package espn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

func TestSplitShortName(t *testing.T) {
	tests := []struct {
		shortName  string
		away, home string
		ok         bool
	}{
		{"BKN @ MIL", "BKN", "MIL", true},
		{"GS @ NO", "GS", "NO", true},
		{"BKN vs MIL", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		away, home, ok := splitShortName(tt.shortName)
		if ok != tt.ok || away != tt.away || home != tt.home {
			t.Errorf("splitShortName(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.shortName, away, home, ok, tt.away, tt.home, tt.ok)
		}
	}
}

func TestParseEventDate(t *testing.T) {
	fallback := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)

	got := parseEventDate("2022-03-01T00:30Z", fallback)
	if got.Hour() != 0 || got.Minute() != 30 {
		t.Errorf("short form parsed as %v", got)
	}

	got = parseEventDate("2022-03-01T00:30:00Z", fallback)
	if got.Minute() != 30 {
		t.Errorf("RFC3339 form parsed as %v", got)
	}

	if got = parseEventDate("garbage", fallback); !got.Equal(fallback) {
		t.Errorf("unparseable date should fall back, got %v", got)
	}
}

func TestCompileJobUnsupportedSport(t *testing.T) {
	p := NewProvider("", nil)
	if _, err := p.CompileJob("curling", "1", time.Now()); err == nil {
		t.Error("unsupported sport should fail compilation")
	}
}

func TestCompileJobPerSportPaths(t *testing.T) {
	p := NewProvider("", nil)
	tests := []struct {
		sport string
		want  string
	}{
		{"nba", BaseURL + "/basketball/nba/scoreboard/401365913"},
		{"nfl", BaseURL + "/football/nfl/scoreboard/401365913"},
		{"epl", BaseURL + "/soccer/eng.1/scoreboard/401365913"},
	}
	for _, tt := range tests {
		graph, err := p.CompileJob(tt.sport, "401365913", time.Now())
		if err != nil {
			t.Fatalf("CompileJob(%s): %v", tt.sport, err)
		}
		if got := graph.Tasks[0].HTTP.URL; got != tt.want {
			t.Errorf("%s scoreboard url = %s, want %s", tt.sport, got, tt.want)
		}
	}
}

func TestCompileJobIsDeterministic(t *testing.T) {
	p := NewProvider("", nil)
	a, err := p.CompileJob("nba", "401365913", time.Now())
	if err != nil {
		t.Fatalf("CompileJob: %v", err)
	}
	b, _ := p.CompileJob("nba", "401365913", time.Now())
	if !a.Equal(b) {
		t.Error("compiling the same match twice must yield identical graphs")
	}

	c, _ := p.CompileJob("nba", "401365914", time.Now())
	if a.Equal(c) {
		t.Error("different matches must yield different graphs")
	}
}

// scoreboardPayload fabricates the slice of ESPN's match scoreboard resource
// the compiled graph reads.
func scoreboardPayload(id string, completed bool, winner string) string {
	competitor := func(homeAway string) string {
		isWinner := "false"
		if homeAway == winner {
			isWinner = "true"
		}
		code := "100"
		if homeAway == "away" {
			code = "200"
		}
		return fmt.Sprintf(`{"id": "%s", "homeAway": "%s", "winner": %s}`, code, homeAway, isWinner)
	}
	return fmt.Sprintf(`{"competitions": [{"id": "%s", "status": {"type": {"completed": %t}}, "competitors": [%s, %s]}]}`,
		id, completed, competitor("home"), competitor("away"))
}

func TestCompiledGraphResolvesOutcomes(t *testing.T) {
	p := NewProvider("", nil)
	graph, err := p.CompileJob("nba", "401365913", time.Now())
	if err != nil {
		t.Fatalf("CompileJob: %v", err)
	}

	tests := []struct {
		name    string
		payload string
		want    float64
	}{
		{"home winner", scoreboardPayload("401365913", true, "home"), oraclejob.OutcomeHomeWin},
		{"away winner", scoreboardPayload("401365913", true, "away"), oraclejob.OutcomeAwayWin},
		{"completed without winner", scoreboardPayload("401365913", true, ""), oraclejob.OutcomeDraw},
		{"still in progress", scoreboardPayload("401365913", false, "home"), oraclejob.OutcomeUnresolved},
		{"different match id", scoreboardPayload("999999999", true, "home"), oraclejob.OutcomeUnresolved},
	}
	for _, tt := range tests {
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			return []byte(tt.payload), nil
		}
		got, err := oraclejob.Evaluate(context.Background(), graph, fetch)
		if err != nil {
			t.Errorf("%s: Evaluate failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: outcome = %v, want %v", tt.name, got, tt.want)
		}
	}
}
