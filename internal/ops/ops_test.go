package ops

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/app/store"
)

func TestHealthzReportsTableCounts(t *testing.T) {
	dataStore := store.New()
	_, err := dataStore.CreateUser("prof", "pw", models.RoleFaculty)
	require.NoError(t, err)
	_, err = dataStore.CreateCourse("CS101", "Intro", 1, 10)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newRouter(dataStore).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","users":1,"courses":1,"enrollments":0}`, rec.Body.String())
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(store.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "academia_")
}
