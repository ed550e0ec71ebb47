package nba

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

const scoreboardFixture = `{
	"games": [
		{
			"gameId": "0022100001",
			"startTimeUTC": "2022-03-01T00:00:00.000Z",
			"hTeam": {"triCode": "MIL"},
			"vTeam": {"triCode": "BKN"}
		},
		{
			"gameId": "0022100002",
			"startTimeUTC": "2022-03-01T02:30:00.000Z",
			"hTeam": {"triCode": "GSW"},
			"vTeam": {"triCode": "NOP"}
		}
	]
}`

func TestFetchEvents(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, scoreboardFixture)
	}))
	defer server.Close()

	p := NewProvider(server.Client(), server.URL, nil)
	date := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)

	events, err := p.FetchEvents(context.Background(), "nba", date)
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if requestedPath != "/prod/v2/20220301/scoreboard.json" {
		t.Errorf("requested path = %s", requestedPath)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].HomeTeam != "milwaukee-bucks" || events[0].AwayTeam != "brooklyn-nets" {
		t.Errorf("first event = %s", events[0].Matchup())
	}
	if events[1].HomeTeam != "golden-state-warriors" || events[1].AwayTeam != "new-orleans-pelicans" {
		t.Errorf("second event = %s", events[1].Matchup())
	}
	if events[0].ExternalID != "0022100001" {
		t.Errorf("external id = %s", events[0].ExternalID)
	}
}

func TestFetchEventsOtherSportIsEmpty(t *testing.T) {
	p := NewProvider(nil, "http://127.0.0.1:1", nil)
	events, err := p.FetchEvents(context.Background(), "epl", time.Now())
	if err != nil || events != nil {
		t.Errorf("FetchEvents(epl) = (%v, %v), want empty and nil", events, err)
	}
}

func TestFetchEventsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewProvider(server.Client(), server.URL, nil)
	if _, err := p.FetchEvents(context.Background(), "nba", time.Now()); err == nil {
		t.Error("non-200 response should error")
	}
}

// boxscorePayload fabricates the basicGameData slice the compiled graph reads.
// statusNum 3 means finished.
func boxscorePayload(statusNum int, homeWinner, awayWinner bool) string {
	return fmt.Sprintf(`{
		"basicGameData": {
			"statusNum": %d,
			"attendance": "17341",
			"hTeam": {"triCode": "MIL", "isWinner": %t},
			"vTeam": {"triCode": "BKN", "isWinner": %t}
		}
	}`, statusNum, homeWinner, awayWinner)
}

func TestCompiledGraphFetchesDatedBoxscore(t *testing.T) {
	p := NewProvider(nil, "", nil)
	gameDate := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	graph, err := p.CompileJob("nba", "0022100001", gameDate)
	if err != nil {
		t.Fatalf("CompileJob: %v", err)
	}

	// The boxscore resource only exists under its date path segment.
	wantURL := BaseURL + "/prod/v1/20220301/0022100001_boxscore.json"
	if got := graph.Tasks[0].HTTP.URL; got != wantURL {
		t.Errorf("boxscore url = %s, want %s", got, wantURL)
	}

	if _, err := p.CompileJob("nba", "0022100001", time.Time{}); err == nil {
		t.Error("zero event date should be rejected, the boxscore url needs it")
	}
}

func TestCompiledGraphResolvesOutcomes(t *testing.T) {
	p := NewProvider(nil, "", nil)
	graph, err := p.CompileJob("nba", "0022100001", time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CompileJob: %v", err)
	}

	tests := []struct {
		name    string
		payload string
		want    float64
	}{
		{"home winner", boxscorePayload(3, true, false), oraclejob.OutcomeHomeWin},
		{"away winner", boxscorePayload(3, false, true), oraclejob.OutcomeAwayWin},
		{"final without winner", boxscorePayload(3, false, false), oraclejob.OutcomeDraw},
		{"in progress", boxscorePayload(2, false, false), oraclejob.OutcomeUnresolved},
		{"not started", boxscorePayload(1, false, false), oraclejob.OutcomeUnresolved},
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

func TestCompileJobRejectsOtherSports(t *testing.T) {
	p := NewProvider(nil, "", nil)
	if _, err := p.CompileJob("epl", "x", time.Now()); err == nil {
		t.Error("nba compiler should reject other sports")
	}
}
