package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredir/directory-server/internal/directory"
	"github.com/caredir/directory-server/internal/filter"
	"github.com/caredir/directory-server/internal/service"
	"github.com/caredir/directory-server/internal/session"
)

// stubService serves a fixed provider list.
type stubService struct {
	providers []directory.Provider
}

var _ service.DirectoryService = (*stubService)(nil)

func newStubService() *stubService {
	return &stubService{
		providers: []directory.Provider{
			{Name: "a", SessionTypes: []string{"Kids"}},
			{Name: "b", SessionTypes: []string{"Individual"}},
			{Name: "c", SessionTypes: []string{"Kids", "Individual"}},
		},
	}
}

func (*stubService) CheckReadiness(context.Context) error { return nil }

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
	return nil, service.ErrProviderNotFound
}

func (s *stubService) ListSessionTypes(context.Context) ([]string, error) {
	return directory.AllSessionTypes(s.providers), nil
}

func (*stubService) Reload(context.Context) error { return nil }

func TestHandler_PushesRenderUpdates(t *testing.T) {
	t.Parallel()

	svc := newStubService()
	sessions := session.NewManager(time.Minute)
	s := sessions.GetOrCreate("")

	server := httptest.NewServer(Handler(svc, sessions))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := strings.Replace(server.URL, "http://", "ws://", 1) + "?session=" + s.ID()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer func() {
		_ = conn.CloseNow()
	}()

	// Initial render carries the full unfiltered list
	var initial RenderUpdate
	require.NoError(t, wsjson.Read(ctx, conn, &initial))
	assert.Equal(t, s.ID(), initial.SessionID)
	assert.Empty(t, initial.Active)
	assert.Equal(t, 3, initial.Total)
	require.Len(t, initial.SessionTypes, 2)
	assert.False(t, initial.SessionTypes[0].Active)

	// A toggle triggers a re-render with the filtered list
	sessions.Toggle(s.ID(), "Kids")

	var update RenderUpdate
	require.NoError(t, wsjson.Read(ctx, conn, &update))
	assert.Equal(t, []string{"Kids"}, update.Active)
	assert.Equal(t, 2, update.Total)

	names := make([]string, 0, len(update.Providers))
	for _, p := range update.Providers {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)

	for _, st := range update.SessionTypes {
		assert.Equal(t, st.Name == "Kids", st.Active)
	}

	// Clearing renders the unfiltered list again
	sessions.Clear(s.ID())

	var cleared RenderUpdate
	require.NoError(t, wsjson.Read(ctx, conn, &cleared))
	assert.Empty(t, cleared.Active)
	assert.Equal(t, 3, cleared.Total)
}
