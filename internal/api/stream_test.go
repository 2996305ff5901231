package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startup-foundry/internal/models"
)

func TestStreamJobStatus(t *testing.T) {
	env := newDefaultEnv(t)

	job := env.jobs.Create("an app")
	require.NoError(t, env.jobs.Complete(job.ID, "p1", "DogWalkr"))

	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) + "/api/jobs/" + job.ID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var streamed models.Job
	require.NoError(t, conn.ReadJSON(&streamed))
	assert.Equal(t, job.ID, streamed.ID)
	assert.Equal(t, models.JobStatusCompleted, streamed.Status)
	assert.Equal(t, 100, streamed.Progress)

	// The server closes the stream after a terminal snapshot
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestStreamJobStatus_UnknownJob(t *testing.T) {
	env := newDefaultEnv(t)

	resp := env.do(t, http.MethodGet, "/api/jobs/nope/stream", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
