package factory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
)

func TestInputsFromEvents(t *testing.T) {
	gameDate := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []reconcile.ReconciledEvent{
		{
			Anchor: reconcile.ProviderEvent{
				Provider:   "nba",
				ExternalID: "0022100001",
				HomeTeam:   "milwaukee-bucks",
				AwayTeam:   "brooklyn-nets",
				EventDate:  gameDate,
			},
			Matches: map[string]reconcile.ProviderEvent{
				"espn":  {Provider: "espn", ExternalID: "401300001", EventDate: gameDate},
				"yahoo": {Provider: "yahoo", ExternalID: "brooklyn-nets-milwaukee-bucks-2022030117", EventDate: gameDate},
			},
		},
	}

	inputs := InputsFromEvents("nba", events)
	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(inputs))
	}
	in := inputs[0]
	if in.Name != "Brooklyn Nets_at_Milwaukee Bucks_2022-03-01" {
		t.Errorf("name = %q", in.Name)
	}
	if in.Sport != "nba" {
		t.Errorf("sport = %q", in.Sport)
	}
	if len(in.Jobs) != 3 {
		t.Fatalf("got %d jobs, want anchor + 2 matches", len(in.Jobs))
	}
	if in.Jobs[0].Provider != "nba" || in.Jobs[0].ExternalID != "0022100001" {
		t.Errorf("anchor job must come first, got %+v", in.Jobs[0])
	}
	// Date-keyed providers need the event date on every job ref.
	for _, job := range in.Jobs {
		if !job.EventDate.Equal(gameDate) {
			t.Errorf("job %s/%s event date = %v, want %v", job.Provider, job.ExternalID, job.EventDate, gameDate)
		}
	}
}

func TestLoadInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.json")
	payload := `[
		{"name": "Nets_at_Bucks_2022-03-01", "sport": "nba", "jobs": [
			{"provider": "nba", "id": "0022100001", "eventDate": "2022-03-01T00:00:00Z"},
			{"provider": "espn", "id": "401300001"}
		]}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := LoadInputs(path)
	if err != nil {
		t.Fatalf("LoadInputs: %v", err)
	}
	if len(inputs) != 1 || len(inputs[0].Jobs) != 2 {
		t.Fatalf("inputs = %+v", inputs)
	}
	if inputs[0].Jobs[1].ExternalID != "401300001" {
		t.Errorf("job id = %q", inputs[0].Jobs[1].ExternalID)
	}
	if inputs[0].Jobs[0].EventDate.Format("2006-01-02") != "2022-03-01" {
		t.Errorf("event date = %v", inputs[0].Jobs[0].EventDate)
	}
}

func TestLoadInputsBadFile(t *testing.T) {
	if _, err := LoadInputs(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "garbage.json")
	os.WriteFile(path, []byte("not json"), 0o644)
	_, err := LoadInputs(path)
	if err == nil {
		t.Fatal("garbage file should error")
	}
	var ferr *Error
	if !errors.As(err, &ferr) || ferr.Kind != JsonInputError {
		t.Errorf("error = %v, want JsonInputError", err)
	}
}

func TestValidateInputs(t *testing.T) {
	ok := []FeedInput{{Name: "a"}, {Name: "b"}}
	if err := ValidateInputs(ok); err != nil {
		t.Errorf("ValidateInputs(ok) = %v", err)
	}
	if err := ValidateInputs([]FeedInput{{Name: "a"}, {Name: "a"}}); err == nil {
		t.Error("duplicate names should fail")
	}
	if err := ValidateInputs([]FeedInput{{Name: ""}}); err == nil {
		t.Error("empty name should fail")
	}
}

func TestErrorFormat(t *testing.T) {
	err := newError(ConfigError, "no valid jobs defined for %s", "Nets_at_Bucks_2022-03-01")
	want := "ConfigError:: no valid jobs defined for Nets_at_Bucks_2022-03-01"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
