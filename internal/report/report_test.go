package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/factory"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/ledger"
)

func sampleResults() []*factory.Result {
	good := &factory.Result{
		Input:     factory.FeedInput{Name: "Nets_at_Bucks_2022-03-01", Sport: "nba"},
		Feed:      ledger.FeedHandle{PublicKey: "feed-pk"},
		Authority: ledger.AuthorityHandle{PublicKey: "auth-pk"},
		Jobs: []factory.JobOutcome{
			{Ref: factory.JobRef{Provider: "nba", ExternalID: "0022100001"}, Handle: ledger.JobHandle{PublicKey: "job-pk"}},
		},
		Created:  true,
		Verified: true,
	}
	bad := &factory.Result{
		Input: factory.FeedInput{Name: "Suns_at_Jazz_2022-03-01", Sport: "nba"},
		Err:   &factory.Error{Kind: factory.SwitchboardError, Message: "failed to create data feed account: rpc timeout"},
	}
	return []*factory.Result{good, bad}
}

func TestBuildPartitionsByOutcome(t *testing.T) {
	summary := Build("run-1", sampleResults())

	if summary.RunID != "run-1" {
		t.Errorf("run id = %q", summary.RunID)
	}
	if len(summary.Created) != 1 {
		t.Fatalf("created = %d, want 1", len(summary.Created))
	}
	created := summary.Created[0]
	if created.DataFeed != "feed-pk" || created.UpdateAuth != "auth-pk" {
		t.Errorf("created entry = %+v", created)
	}
	if len(created.Jobs) != 1 || created.Jobs[0].PubKey != "job-pk" {
		t.Errorf("created jobs = %+v", created.Jobs)
	}

	if len(summary.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(summary.Errors))
	}
	msg := summary.Errors["Suns_at_Jazz_2022-03-01"]
	if !strings.HasPrefix(msg, "SwitchboardError:: ") {
		t.Errorf("error entry = %q", msg)
	}
}

func TestBuildCreatedButUnverifiedStillReported(t *testing.T) {
	// A feed can finish its create sequence and then fail verification;
	// it appears in both halves so the operator can find it.
	res := &factory.Result{
		Input:   factory.FeedInput{Name: "n", Sport: "nba"},
		Feed:    ledger.FeedHandle{PublicKey: "feed-pk"},
		Created: true,
		Err:     &factory.Error{Kind: factory.VerifyError, Message: "data feed has the wrong number of jobs, expected 2, received 1"},
	}
	summary := Build("run-2", []*factory.Result{res})
	if len(summary.Created) != 1 || len(summary.Errors) != 1 {
		t.Errorf("created=%d errors=%d, want 1 and 1", len(summary.Created), len(summary.Errors))
	}
}

func TestWriteFilesAlwaysProducesBothArtifacts(t *testing.T) {
	dir := t.TempDir()

	createdPath, errorsPath, err := WriteFiles(dir, Build("run-3", nil))
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}

	for _, path := range []string{createdPath, errorsPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		var decoded interface{}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Errorf("%s is not valid JSON: %v", path, err)
		}
	}
	if !strings.Contains(createdPath, "CreatedFeeds-") {
		t.Errorf("created path = %s", createdPath)
	}
	if !strings.Contains(errorsPath, "Errors-") {
		t.Errorf("errors path = %s", errorsPath)
	}
}
