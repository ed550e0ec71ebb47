package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

func gatewayStub(t *testing.T) *httptest.Server {
	t.Helper()
	// Method checks live inside the handlers because the Go 1.21 ServeMux
	// does not support "METHOD /path" patterns.
	requireMethod := func(method string, h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.NotFound(w, r)
				return
			}
			h(w, r)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/fulfillment-managers/", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"valid": true})
	}))
	mux.HandleFunc("/v1/feeds", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"publicKey": "feed-pk"})
	}))
	mux.HandleFunc("/v1/feeds/feed-pk/jobs", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Tasks []json.RawMessage `json:"tasks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Tasks) == 0 {
			http.Error(w, "missing tasks", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"publicKey": "job-pk"})
	}))
	mux.HandleFunc("/v1/feeds/feed-pk/config", requireMethod(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("/v1/feeds/feed-pk/authority", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"publicKey": "auth-pk",
			"secretKey": []byte{1, 2, 3},
		})
	}))
	mux.HandleFunc("/v1/feeds/feed-pk", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobCount": 2, "minConfirmations": 5, "locked": false,
		})
	}))
	return httptest.NewServer(mux)
}

func TestClientFullSequence(t *testing.T) {
	server := gatewayStub(t)
	defer server.Close()

	c := NewClient(server.URL)
	ctx := context.Background()

	if err := c.VerifyManagerAccount(ctx, "mgr-pk"); err != nil {
		t.Fatalf("VerifyManagerAccount: %v", err)
	}

	feed, err := c.CreateFeed(ctx, "program-pk")
	if err != nil {
		t.Fatalf("CreateFeed: %v", err)
	}
	if feed.PublicKey != "feed-pk" {
		t.Errorf("feed = %+v", feed)
	}

	graph := &oraclejob.Graph{
		Provider:   "nba",
		ExternalID: "0022100001",
		Tasks:      []*oraclejob.Task{oraclejob.NewValue(1)},
	}
	job, err := c.AttachJob(ctx, feed, graph)
	if err != nil {
		t.Fatalf("AttachJob: %v", err)
	}
	if job.PublicKey != "job-pk" {
		t.Errorf("job = %+v", job)
	}

	if err := c.SetFeedConfig(ctx, feed, FeedConfig{MinConfirmations: 5, MinUpdateDelaySeconds: 60}); err != nil {
		t.Fatalf("SetFeedConfig: %v", err)
	}

	auth, err := c.CreateAuthority(ctx, "mgr-pk", feed, AuthorityPerms{AuthorizeUsage: true})
	if err != nil {
		t.Fatalf("CreateAuthority: %v", err)
	}
	if auth.PublicKey != "auth-pk" || len(auth.Secret) == 0 {
		t.Errorf("authority = %+v", auth)
	}

	state, err := c.ReadFeedState(ctx, feed)
	if err != nil {
		t.Fatalf("ReadFeedState: %v", err)
	}
	if state.AttachedJobCount != 2 || state.MinConfirmations != 5 {
		t.Errorf("state = %+v", state)
	}
}

func TestClientSurfacesGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient funds", http.StatusPaymentRequired)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.CreateFeed(context.Background(), "program-pk")
	if err == nil {
		t.Fatal("gateway error should surface")
	}
	msg := fmt.Sprint(err)
	if !strings.Contains(msg, "402") || !strings.Contains(msg, "insufficient funds") {
		t.Errorf("error = %q, want status and body", msg)
	}
}
