package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"linkmanager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatsEndpoint(t *testing.T) {
	app := newTestApp(t)

	w := app.get(t, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot models.StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, 0, snapshot.PageViews)
	assert.False(t, snapshot.TelegramConfigured)
	assert.NotEmpty(t, snapshot.ResetDate)
	assert.NotNil(t, snapshot.IPLogs)
}

func TestRecordStatEndpoint(t *testing.T) {
	t.Run("copy click is counted once per IP", func(t *testing.T) {
		app := newTestApp(t)

		for i := 0; i < 2; i++ {
			w := app.postJSON(t, "/api/stats", `{"type":"copy_clicks","linkId":"a"}`)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"success":true`)
		}

		snapshot, err := app.settingsSnapshot(t)
		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.CopyClicks)
	})

	t.Run("unknown type is acknowledged without counting", func(t *testing.T) {
		app := newTestApp(t)

		w := app.postJSON(t, "/api/stats", `{"type":"page_views"}`)
		assert.Contains(t, w.Body.String(), `"success":true`)

		snapshot, err := app.settingsSnapshot(t)
		require.NoError(t, err)
		assert.Equal(t, 0, snapshot.CopyClicks)
		assert.Equal(t, 0, snapshot.PageViews)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newTestApp(t)
		w := app.postJSON(t, "/api/stats", `{not json`)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("client IP comes from the edge header", func(t *testing.T) {
		app := newTestApp(t)

		for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
			req := newJSONRequestWithIP(t, "/api/stats", `{"type":"telegram_clicks"}`, ip)
			w := app.serve(req)
			require.Equal(t, http.StatusOK, w.Code)
		}

		snapshot, err := app.settingsSnapshot(t)
		require.NoError(t, err)
		assert.Equal(t, 2, snapshot.TelegramClicks)
	})
}

func (a *testApp) settingsSnapshot(t *testing.T) (*models.StatsSnapshot, error) {
	t.Helper()

	w := a.get(t, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot models.StatsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
