package repository

import (
	"context"
	"encoding/json"
	"io"
	"meet-and-greet/internal/client"
	"meet-and-greet/internal/config"
	"meet-and-greet/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupabaseRepo(t *testing.T, h http.HandlerFunc) ApplicationRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := client.NewSupabaseClient(&config.Supabase{URL: srv.URL, ServiceKey: "key"}, srv.Client())
	require.NoError(t, err)
	return NewSupabaseApplicationRepository(c, "")
}

func TestSupabaseRepository_InsertCopiesStoredRow(t *testing.T) {
	repo := newSupabaseRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/meeting_applications", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var sent []map[string]interface{}
		if assert.NoError(t, json.Unmarshal(body, &sent)) && assert.Len(t, sent, 1) {
			assert.NotContains(t, sent[0], "id")
			assert.NotContains(t, sent[0], "created_at")
			assert.Equal(t, "pending", sent[0]["status"])
			assert.Equal(t, float64(1000), sent[0]["plan_price"])
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"3f1c","full_name":"Jane Doe","email":"jane@example.com","plan_price":1000,"status":"pending","created_at":"2026-01-01T12:00:00.123456+00:00","updated_at":"2026-01-01T12:00:00.123456+00:00"}]`))
	})

	row := testRow("jane@example.com")
	require.NoError(t, repo.Insert(context.Background(), row))

	assert.Equal(t, "3f1c", row.ID)
	assert.Equal(t, 2026, row.CreatedAt.Year())
}

func TestSupabaseRepository_InsertError(t *testing.T) {
	repo := newSupabaseRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"null value in column \"phone\""}`))
	})

	err := repo.Insert(context.Background(), testRow("jane@example.com"))
	assert.EqualError(t, err, `null value in column "phone"`)
}

func TestSupabaseRepository_FindFilters(t *testing.T) {
	repo := newSupabaseRepo(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.jane@example.com", q.Get("email"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		_, _ = w.Write([]byte(`[{"id":"b","email":"jane@example.com"},{"id":"a","email":"jane@example.com"}]`))
	})

	rows, err := repo.Find(context.Background(), ApplicationFilter{Email: "jane@example.com"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID)
}

func TestSupabaseRepository_UpdateCountsRows(t *testing.T) {
	at := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	repo := newSupabaseRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.app-1", r.URL.Query().Get("id"))
		assert.Equal(t, "in.(pending)", r.URL.Query().Get("status"))

		var patch map[string]string
		body, _ := io.ReadAll(r.Body)
		if assert.NoError(t, json.Unmarshal(body, &patch)) {
			assert.Equal(t, "confirmed", patch["status"])
			assert.Equal(t, "2026-02-01T09:30:00Z", patch["updated_at"])
		}
		_, _ = w.Write([]byte(`[{"id":"app-1","status":"confirmed"}]`))
	})

	n, err := repo.Update(context.Background(),
		ApplicationFilter{ID: "app-1", Statuses: model.StatusConfirmed.Predecessors()},
		model.ApplicationPatch{Status: model.StatusConfirmed, UpdatedAt: at})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
