package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/state"
)

func TestCampaignsUpload_FromStdin(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	var filename, body string
	b.handle("POST /api/v1/campaigns/{id}/upload-csv", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "c1" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		filename, body = header.Filename, string(data)
		writeTestJSON(w, http.StatusOK, map[string]int{"added": 2})
	})

	csv := "phone_number,contact_name\n+15550001,Ann\n+15550002,Bob\n"
	res := b.run(testContext(t), strings.NewReader(csv), "campaigns", "upload", "c1", "-")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "Added 2 contacts\n", res.stdout)
	assert.Equal(t, "stdin", filename)
	assert.Equal(t, csv, body)
}

func TestCampaignsUpload_RejectedShowsNotice(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("POST /api/v1/campaigns/{id}/upload-csv", http.StatusBadRequest, map[string]string{"detail": "Missing phone_number column"})

	res := b.run(testContext(t), strings.NewReader("name\nAnn\n"), "campaigns", "upload", "c1", "-")
	assert.Equal(t, ExitFailure, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, state.UploadRejectedNotice+"\n"), res.stderr)
	assert.Contains(t, res.stderr, "Missing phone_number column")
}

func TestCampaignsUpload_ServerErrorShowsNotice(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("POST /api/v1/campaigns/{id}/upload-csv", http.StatusInternalServerError, map[string]string{"detail": "boom"})

	res := b.run(testContext(t), strings.NewReader("phone_number\n+1555\n"), "campaigns", "upload", "c1", "-")
	assert.Equal(t, ExitFailure, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, state.UploadErroredNotice+"\n"), res.stderr)
}

func TestUploadFailure(t *testing.T) {
	assert.IsType(t, state.UploadRejected{}, uploadFailure(core.FromStatus(http.MethodPost, "/campaigns/c1/upload-csv", http.StatusUnprocessableEntity, nil)))
	assert.IsType(t, state.UploadErrored{}, uploadFailure(core.FromStatus(http.MethodPost, "/campaigns/c1/upload-csv", http.StatusBadGateway, nil)))
	assert.IsType(t, state.UploadErrored{}, uploadFailure(errors.New("connection reset")))
}

func TestCampaignsContacts_FromFlags(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	var got []map[string]any
	b.handle("POST /api/v1/campaigns/{id}/contacts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeTestJSON(w, http.StatusOK, map[string]int{"added": len(got)})
	})

	res := b.run(testContext(t), nil, "campaigns", "contacts", "c1", "--phone", "+15550001", "--phone", "+15550002")
	require.Equal(t, ExitOK, res.code, res.stderr)
	require.Len(t, got, 2)
	assert.Equal(t, "+15550002", got[1]["phone_number"])
}

func TestCampaignsContacts_FromYAML(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	var got []map[string]any
	b.handle("POST /api/v1/campaigns/{id}/contacts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeTestJSON(w, http.StatusOK, map[string]int{"added": len(got)})
	})

	doc := "- phone_number: \"+15550001\"\n  contact_name: Ann\n  custom_data:\n    plan: gold\n"
	res := b.run(testContext(t), strings.NewReader(doc), "campaigns", "contacts", "c1", "-f", "-")
	require.Equal(t, ExitOK, res.code, res.stderr)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0]["contact_name"])
	assert.Equal(t, map[string]any{"plan": "gold"}, got[0]["custom_data"])
}

func campaignDetail(completed int) map[string]any {
	return map[string]any{
		"campaign": map[string]any{"id": "c1", "name": "Renewals", "status": "running", "agent_id": "a1", "total_contacts": 4},
		"stats":    map[string]int{"completed": completed, "pending": 4 - completed},
	}
}

func TestCampaignsShow_PrintsProgress(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/campaigns/{id}", http.StatusOK, campaignDetail(1))

	res := b.run(testContext(t), nil, "campaigns", "show", "c1")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "c1  Renewals  status=running  progress=25%  contacts=4  completed=1 pending=3\n", res.stdout)
}

func TestCampaignsShow_WatchRefreshesUntilCancelled(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	var calls atomic.Int32
	b.handle("GET /api/v1/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		writeTestJSON(w, http.StatusOK, campaignDetail(min(n, 4)))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	res := b.run(ctx, nil, "campaigns", "show", "c1", "--watch")
	require.Equal(t, ExitOK, res.code, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.GreaterOrEqual(t, len(lines), 2, res.stdout)
	for _, line := range lines {
		assert.Regexp(t, `^c1  Renewals  status=running  progress=(25|50|75|100)%`, line)
	}
}

func TestCampaignsShow_WatchStopsWhenSessionExpires(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/campaigns/{id}", http.StatusUnauthorized, nil)
	b.handleJSON("POST /api/v1/auth/refresh", http.StatusUnauthorized, nil)

	res := b.run(testContext(t), nil, "campaigns", "show", "c1", "--watch")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "session expired")
}

func TestCampaignsCreate_RequiresNameAndAgent(t *testing.T) {
	b := newBackend(t)
	res := b.run(testContext(t), nil, "campaigns", "create", "--name", "Renewals")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "--name and --agent are required")
}

func TestCampaignsStart_ShowsRunningCampaign(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/campaigns/{id}", http.StatusOK, map[string]any{
		"campaign": map[string]any{"id": "c1", "name": "Renewals", "status": "draft", "agent_id": "a1", "total_contacts": 2},
		"stats":    map[string]int{"pending": 2},
	})
	var started []string
	b.handle("POST /api/v1/campaigns/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		started = append(started, r.PathValue("id"))
		writeTestJSON(w, http.StatusOK, map[string]string{"status": "started", "campaign": "Renewals"})
	})

	res := b.run(testContext(t), nil, "campaigns", "start", "c1")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, []string{"c1"}, started)
	assert.Equal(t, "Campaign Renewals started\nc1  Renewals  status=running  progress=0%  contacts=2  pending=2\n", res.stdout)
}

func TestCampaignsStart_MissingCampaignIsNotStarted(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/campaigns/{id}", http.StatusNotFound, map[string]string{"detail": "Campaign not found"})
	var calls int
	b.handle("POST /api/v1/campaigns/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeTestJSON(w, http.StatusOK, map[string]string{"status": "started"})
	})

	res := b.run(testContext(t), nil, "campaigns", "start", "missing")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Campaign not found")
	assert.Zero(t, calls)
}
