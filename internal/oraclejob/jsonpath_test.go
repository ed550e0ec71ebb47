package oraclejob

import (
	"encoding/json"
	"testing"
)

func query(t *testing.T, payload, path string) []interface{} {
	t.Helper()
	var doc interface{}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	segments, err := parsePath(path)
	if err != nil {
		t.Fatalf("parsePath(%s): %v", path, err)
	}
	return queryPath(doc, segments)
}

func TestQueryFieldNavigation(t *testing.T) {
	payload := `{"service": {"scoreboard": {"count": 3}}}`
	got := query(t, payload, "$.service.scoreboard.count")
	if len(got) != 1 || got[0] != float64(3) {
		t.Errorf("query = %v, want [3]", got)
	}
}

func TestQueryArrayFilter(t *testing.T) {
	payload := `{
		"competitions": [
			{"id": "a", "status": {"type": {"completed": false}}, "score": 1},
			{"id": "b", "status": {"type": {"completed": true}}, "score": 2}
		]
	}`
	got := query(t, payload, "$.competitions[?(@.status.type.completed && @.id == 'b')].score")
	if len(got) != 1 || got[0] != float64(2) {
		t.Errorf("query = %v, want [2]", got)
	}

	if got := query(t, payload, "$.competitions[?(@.id == 'missing')].score"); got != nil {
		t.Errorf("non-matching filter = %v, want nil", got)
	}
}

func TestQueryFilterOnSingleObject(t *testing.T) {
	payload := `{"basicGameData": {"statusNum": 3, "attendance": "17341", "hTeam": {"isWinner": true}}}`
	got := query(t, payload, "$.basicGameData[?(@.statusNum == 3 && @.hTeam.isWinner)].attendance")
	if len(got) != 1 || got[0] != "17341" {
		t.Errorf("query = %v, want [17341]", got)
	}
}

func TestQueryFieldToFieldComparison(t *testing.T) {
	payload := `{
		"games": [
			{"id": "x", "winning_team_id": "nba.t.15", "home_team_id": "nba.t.15", "attendance": 100},
			{"id": "y", "winning_team_id": "nba.t.3", "home_team_id": "nba.t.4", "attendance": 200}
		]
	}`
	got := query(t, payload, "$.games[?(@.winning_team_id == @.home_team_id)].attendance")
	if len(got) != 1 || got[0] != float64(100) {
		t.Errorf("query = %v, want [100]", got)
	}
}

func TestQueryFilterOnKeyedObject(t *testing.T) {
	// Yahoo serves games as an object keyed by game ID.
	payload := `{
		"games": {
			"nba.g.2021100730": {"gameid": "nba.g.2021100730", "status_type": "final", "attendance": 17341},
			"nba.g.2021100731": {"gameid": "nba.g.2021100731", "status_type": "pregame", "attendance": 0}
		}
	}`
	got := query(t, payload, "$.games[?(@.gameid == 'nba.g.2021100730' && @.status_type == 'final')].attendance")
	if len(got) != 1 || got[0] != float64(17341) {
		t.Errorf("query = %v, want [17341]", got)
	}
}

func TestQueryFieldFansOutOverArrays(t *testing.T) {
	payload := `{"events": [{"id": "1"}, {"id": "2"}]}`
	got := query(t, payload, "$.events.id")
	if len(got) != 2 {
		t.Errorf("query = %v, want both ids", got)
	}
}

func TestParsePathErrors(t *testing.T) {
	bad := []string{
		"competitions.id",
		"$.",
		"$.items[0]",
		"$.items[?(@.x == )]",
		"$.items[?(name == 'x')]",
		"$.items[?(@.x",
	}
	for _, path := range bad {
		if _, err := parsePath(path); err == nil {
			t.Errorf("parsePath(%q) should fail", path)
		}
	}
}

func TestAsNumberAcceptsNumericStrings(t *testing.T) {
	if n, ok := asNumber("17341"); !ok || n != 17341 {
		t.Errorf("asNumber(\"17341\") = (%v, %v)", n, ok)
	}
	if _, ok := asNumber("sold out"); ok {
		t.Error("asNumber should reject non-numeric strings")
	}
	if n, ok := asNumber(float64(5)); !ok || n != 5 {
		t.Errorf("asNumber(5) = (%v, %v)", n, ok)
	}
}
