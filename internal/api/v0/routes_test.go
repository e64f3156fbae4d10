package v0

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredir/directory-server/internal/directory"
	"github.com/caredir/directory-server/internal/filter"
	"github.com/caredir/directory-server/internal/service"
	"github.com/caredir/directory-server/internal/session"
)

// stubService is a hand-rolled DirectoryService double serving a fixed
// provider list.
type stubService struct {
	providers []directory.Provider
	ready     bool
}

var _ service.DirectoryService = (*stubService)(nil)

func newStubService() *stubService {
	return &stubService{
		ready: true,
		providers: []directory.Provider{
			{Name: "a", SessionTypes: []string{"Kids"}},
			{Name: "b", SessionTypes: []string{"Individual"}},
			{Name: "c", SessionTypes: []string{"Kids", "Individual"}},
			{Name: "untagged"},
		},
	}
}

func (s *stubService) CheckReadiness(context.Context) error {
	if !s.ready {
		return service.ErrNotReady
	}
	return nil
}

func (s *stubService) GetDirectory(context.Context) (*directory.Directory, string, error) {
	return &directory.Directory{Providers: s.providers}, "stub:test", nil
}

func (s *stubService) ListProviders(_ context.Context, opts ...service.Option) ([]directory.Provider, error) {
	options := &service.ListProvidersOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return filter.Visible(s.providers, options.SessionTypes), nil
}

func (s *stubService) GetProvider(_ context.Context, name string) (*directory.Provider, error) {
	for _, p := range s.providers {
		if p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, service.ErrProviderNotFound
}

func (s *stubService) ListSessionTypes(context.Context) ([]string, error) {
	return directory.AllSessionTypes(s.providers), nil
}

func (*stubService) Reload(context.Context) error { return nil }

func newTestRouter() http.Handler {
	return Router(newStubService(), session.NewManager(time.Minute))
}

func doJSON(t *testing.T, router http.Handler, method, path, sessionID string, body string, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func providerNames(providers []directory.Provider) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Name)
	}
	return out
}

func TestListProviders_NoFilters(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var resp ProvidersResponse
	rec := doJSON(t, router, http.MethodGet, "/providers", "", "", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, rec.Header().Get(SessionHeader))
	assert.Equal(t, []string{"a", "b", "c", "untagged"}, providerNames(resp.Providers))
	assert.Equal(t, 4, resp.Total)

	// Tag universe with nothing active
	require.Len(t, resp.SessionTypes, 2)
	for _, st := range resp.SessionTypes {
		assert.False(t, st.Active)
	}
}

func TestToggleThenListProviders(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var toggle ToggleResponse
	rec := doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"Kids"}`, &toggle)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, toggle.Active)
	assert.Equal(t, []string{"Kids"}, toggle.Selection)

	var resp ProvidersResponse
	doJSON(t, router, http.MethodGet, "/providers", toggle.SessionID, "", &resp)
	assert.Equal(t, []string{"a", "c"}, providerNames(resp.Providers))

	// Untagged provider is excluded while any filter is active
	assert.NotContains(t, providerNames(resp.Providers), "untagged")

	// Active flag is reflected in the tag chips
	for _, st := range resp.SessionTypes {
		assert.Equal(t, st.Name == "Kids", st.Active)
	}
}

func TestToggle_OrSemantics(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var toggle ToggleResponse
	doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"Kids"}`, &toggle)
	sid := toggle.SessionID

	doJSON(t, router, http.MethodPost, "/filters/toggle", sid, `{"sessionType":"Individual"}`, &toggle)
	assert.Equal(t, []string{"Kids", "Individual"}, toggle.Selection)

	var resp ProvidersResponse
	doJSON(t, router, http.MethodGet, "/providers", sid, "", &resp)
	assert.Equal(t, []string{"a", "b", "c"}, providerNames(resp.Providers))

	// Toggling Kids off leaves only the Individual providers
	doJSON(t, router, http.MethodPost, "/filters/toggle", sid, `{"sessionType":"Kids"}`, &toggle)
	assert.False(t, toggle.Active)

	doJSON(t, router, http.MethodGet, "/providers", sid, "", &resp)
	assert.Equal(t, []string{"b", "c"}, providerNames(resp.Providers))
}

func TestToggle_UnknownTagYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var toggle ToggleResponse
	doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"No Such Tag"}`, &toggle)
	assert.True(t, toggle.Active)

	var resp ProvidersResponse
	doJSON(t, router, http.MethodGet, "/providers", toggle.SessionID, "", &resp)
	assert.Empty(t, resp.Providers)
	assert.Equal(t, 0, resp.Total)
}

func TestToggle_InvalidBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearFilters(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var toggle ToggleResponse
	doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"Kids"}`, &toggle)
	sid := toggle.SessionID
	doJSON(t, router, http.MethodPost, "/filters/toggle", sid, `{"sessionType":"Individual"}`, &toggle)

	var cleared ClearResponse
	doJSON(t, router, http.MethodPost, "/filters/clear", sid, "", &cleared)
	assert.Equal(t, 2, cleared.Removed)

	// Clearing restores the unfiltered view
	var resp ProvidersResponse
	doJSON(t, router, http.MethodGet, "/providers", sid, "", &resp)
	assert.Len(t, resp.Providers, 4)

	var state FilterStateResponse
	doJSON(t, router, http.MethodGet, "/filters", sid, "", &state)
	assert.Empty(t, state.Active)
}

func TestGetFilters(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var toggle ToggleResponse
	doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"Kids"}`, &toggle)

	var state FilterStateResponse
	doJSON(t, router, http.MethodGet, "/filters", toggle.SessionID, "", &state)
	assert.Equal(t, toggle.SessionID, state.SessionID)
	assert.Equal(t, []string{"Kids"}, state.Active)
}

func TestGetProvider(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var p directory.Provider
	rec := doJSON(t, router, http.MethodGet, "/providers/b", "", "", &p)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b", p.Name)

	rec = doJSON(t, router, http.MethodGet, "/providers/missing", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessionTypes(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var toggle ToggleResponse
	doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"Individual"}`, &toggle)

	var resp SessionTypesResponse
	doJSON(t, router, http.MethodGet, "/session-types", toggle.SessionID, "", &resp)

	require.Len(t, resp.SessionTypes, 2)
	assert.Equal(t, "Kids", resp.SessionTypes[0].Name)
	assert.False(t, resp.SessionTypes[0].Active)
	assert.Equal(t, "Individual", resp.SessionTypes[1].Name)
	assert.True(t, resp.SessionTypes[1].Active)
}

func TestSessionIsolation(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	var first ToggleResponse
	doJSON(t, router, http.MethodPost, "/filters/toggle", "", `{"sessionType":"Kids"}`, &first)

	// A request without a session header gets its own fresh session
	var resp ProvidersResponse
	doJSON(t, router, http.MethodGet, "/providers", "", "", &resp)
	assert.NotEqual(t, first.SessionID, resp.SessionID)
	assert.Len(t, resp.Providers, 4)
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	svc := newStubService()
	router := HealthRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "healthy"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readiness", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_version"))
}

func TestReadiness_NotReady(t *testing.T) {
	t.Parallel()

	svc := newStubService()
	svc.ready = false
	router := HealthRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readiness", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
