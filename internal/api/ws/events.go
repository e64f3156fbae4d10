// Package ws streams rendered directory updates to subscribed clients.
//
// A client opens a websocket for its browsing session and receives a full
// render payload (visible providers plus tag states) immediately and then
// again after every selection change. Rendering is driven by the session
// hub's events, never invoked synchronously from the mutation path.
package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/caredir/directory-server/internal/directory"
	"github.com/caredir/directory-server/internal/service"
	"github.com/caredir/directory-server/internal/session"
)

// TagState is one tag with its active flag, as rendered for the client.
type TagState struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// RenderUpdate is the payload pushed on every selection change.
type RenderUpdate struct {
	SessionID    string               `json:"sessionId"`
	Active       []string             `json:"active"`
	SessionTypes []TagState           `json:"sessionTypes"`
	Providers    []directory.Provider `json:"providers"`
	Total        int                  `json:"total"`
}

// Handler returns an http.Handler that upgrades to a websocket and streams
// render updates for the caller's session. The session is resolved from the
// "session" query parameter or the X-Session-Id header; an unknown or empty
// ID gets a fresh session.
func Handler(svc service.DirectoryService, sessions *session.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = r.Header.Get("X-Session-Id")
		}
		s := sessions.GetOrCreate(sessionID)

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			slog.Debug("Websocket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.CloseNow()
		}()

		events, cancel := sessions.Subscribe(s.ID())
		defer cancel()

		// CloseRead handles control frames and cancels the context when the
		// client goes away; this endpoint never expects inbound data.
		ctx := conn.CloseRead(r.Context())

		// Initial render so the client starts from the current state
		if err := push(ctx, conn, svc, s.ID(), s.Active()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return
			case evt, ok := <-events:
				if !ok {
					_ = conn.Close(websocket.StatusNormalClosure, "")
					return
				}
				if err := push(ctx, conn, svc, evt.SessionID, evt.Active); err != nil {
					slog.Debug("Websocket push failed", "session", evt.SessionID, "error", err)
					return
				}
			}
		}
	})
}

// push renders the visible provider list for the given active tags and
// writes it to the connection.
func push(ctx context.Context, conn *websocket.Conn, svc service.DirectoryService, sessionID string, active []string) error {
	providers, err := svc.ListProviders(ctx, service.WithSessionTypes(active...))
	if err != nil {
		return err
	}

	tags, err := svc.ListSessionTypes(ctx)
	if err != nil {
		return err
	}

	activeSet := make(map[string]bool, len(active))
	for _, tag := range active {
		activeSet[tag] = true
	}

	states := make([]TagState, 0, len(tags))
	for _, tag := range tags {
		states = append(states, TagState{Name: tag, Active: activeSet[tag]})
	}

	return wsjson.Write(ctx, conn, RenderUpdate{
		SessionID:    sessionID,
		Active:       active,
		SessionTypes: states,
		Providers:    providers,
		Total:        len(providers),
	})
}
