package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/discovery"
	"github.com/leadscout/discovery-bot/internal/models"
	"github.com/leadscout/discovery-bot/internal/sources"
	"github.com/leadscout/discovery-bot/internal/store"
)

type stubSource struct {
	name models.Platform
}

var _ sources.Source = (*stubSource)(nil)

func (s *stubSource) GetName() models.Platform { return s.name }
func (s *stubSource) IsEnabled() bool          { return true }

func (s *stubSource) FetchCandidates(ctx context.Context) ([]models.Candidate, error) {
	return nil, nil
}

func newTestServer(t *testing.T, authEnabled bool) (*Server, *store.SQLiteStore) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		MinConfidenceScore:   60,
		DashboardAuthEnabled: authEnabled,
		DashboardUsername:    "admin",
		DashboardPassword:    "secret",
	}
	rules := config.DefaultRules()

	discoverySvc := discovery.NewServiceWithSources(cfg, rules, st,
		&stubSource{name: models.PlatformFacebook})

	return NewServer(cfg, rules, st, discoverySvc), st
}

func seedBusiness(t *testing.T, st *store.SQLiteStore, pageURL string, platform models.Platform, category string) {
	t.Helper()

	business := models.Business{
		BusinessName:    "Lagos Bakery",
		Platform:        platform,
		PageURL:         pageURL,
		Category:        category,
		ConfidenceScore: 72,
		Priority:        models.PriorityMedium,
	}
	inserted, err := st.Insert(context.Background(), &business)
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestServer_Businesses(t *testing.T) {
	server, st := newTestServer(t, false)
	seedBusiness(t, st, "https://facebook.com/lagosbakery", models.PlatformFacebook, "food")
	seedBusiness(t, st, "https://linkedin.com/company/techhub", models.PlatformLinkedIn, "tech")

	tests := []struct {
		name      string
		url       string
		wantCode  int
		wantCount int
	}{
		{"all", "/api/businesses", http.StatusOK, 2},
		{"platform filter", "/api/businesses?platform=facebook", http.StatusOK, 1},
		{"category filter", "/api/businesses?category=tech", http.StatusOK, 1},
		{"explicit limit", "/api/businesses?limit=1", http.StatusOK, 1},
		{"limit too large", "/api/businesses?limit=501", http.StatusBadRequest, 0},
		{"limit not a number", "/api/businesses?limit=abc", http.StatusBadRequest, 0},
		{"limit zero", "/api/businesses?limit=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var body struct {
				Success bool              `json:"success"`
				Count   int               `json:"count"`
				Data    []models.Business `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Data, tt.wantCount)
		})
	}
}

func TestServer_Statistics(t *testing.T) {
	server, st := newTestServer(t, false)
	seedBusiness(t, st, "https://facebook.com/lagosbakery", models.PlatformFacebook, "food")

	req := httptest.NewRequest("GET", "/api/statistics", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    models.Statistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.Total)
	assert.Equal(t, 1, body.Data.ByPlatform["facebook"])
}

func TestServer_Categories(t *testing.T) {
	server, _ := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/api/categories", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "food")
	assert.Contains(t, rec.Body.String(), "keywords")
}

func TestServer_ExportCSV(t *testing.T) {
	server, st := newTestServer(t, false)
	seedBusiness(t, st, "https://facebook.com/lagosbakery", models.PlatformFacebook, "food")

	req := httptest.NewRequest("GET", "/api/export/csv", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "business_name,platform,page_url")
	assert.Contains(t, rec.Body.String(), "Lagos Bakery")
}

func TestServer_Trigger(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		server, _ := newTestServer(t, true)

		req := httptest.NewRequest("POST", "/api/trigger/facebook", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong credentials", func(t *testing.T) {
		server, _ := newTestServer(t, true)

		req := httptest.NewRequest("POST", "/api/trigger/facebook", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepted with credentials", func(t *testing.T) {
		server, _ := newTestServer(t, true)

		req := httptest.NewRequest("POST", "/api/trigger/facebook", nil)
		req.SetBasicAuth("admin", "secret")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "facebook discovery triggered")
	})

	t.Run("unknown source", func(t *testing.T) {
		server, _ := newTestServer(t, false)

		req := httptest.NewRequest("POST", "/api/trigger/myspace", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
