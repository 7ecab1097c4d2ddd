package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	type payload struct {
		ProjectID string `json:"project_id"`
		Name      string `json:"name"`
	}

	evt, err := NewEvent("projects:project.created",
		payload{ProjectID: "p1", Name: "Rollout"}, "projects")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, evt.EventID)
	assert.Equal(t, "projects:project.created", evt.Name)
	assert.Equal(t, "projects", evt.SourceModule)
	assert.WithinDuration(t, time.Now(), evt.OccurredAt, 2*time.Second)

	var decoded payload
	require.NoError(t, evt.UnmarshalData(&decoded))
	assert.Equal(t, "p1", decoded.ProjectID)
	assert.Equal(t, "Rollout", decoded.Name)
}

func TestNewEventSnapshotsPayload(t *testing.T) {
	payload := map[string]string{"project_id": "p1"}
	evt, err := NewEvent("projects:project.created", payload, "projects")
	require.NoError(t, err)

	// Mutating the caller's value after publish must not leak into the
	// event handlers observe.
	payload["project_id"] = "p2"

	var decoded map[string]string
	require.NoError(t, evt.UnmarshalData(&decoded))
	assert.Equal(t, "p1", decoded["project_id"])
}

func TestNewEventRejectsUnserializablePayload(t *testing.T) {
	_, err := NewEvent("projects:project.created", make(chan int), "projects")
	assert.Error(t, err)
}

func TestEventIDsAreDistinctPerPublish(t *testing.T) {
	a, err := NewEvent("projects:project.created", json.RawMessage(`{}`), "projects")
	require.NoError(t, err)
	b, err := NewEvent("projects:project.created", json.RawMessage(`{}`), "projects")
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestHandlerFunc(t *testing.T) {
	wantErr := errors.New("boom")
	var got Event

	fn := HandlerFunc(func(_ context.Context, evt Event) error {
		got = evt
		return wantErr
	})

	evt, err := NewEvent("leads:lead.created", nil, "leads")
	require.NoError(t, err)

	assert.Equal(t, wantErr, fn.Handle(context.Background(), evt))
	assert.Equal(t, evt.EventID, got.EventID)
}
