package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/internal/platform/httpserver"
	"github.com/example/socialtrust/services/social/internal/events"
)

const keepAliveInterval = 15 * time.Second

// Events handles GET /v1/events as a server-sent event stream. The optional
// ?types=post.created,post.liked query narrows the stream.
func Events(b *events.Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			api.Internal(w, httpserver.RequestIDFromContext(r.Context()))
			return
		}
		var types []string
		if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
			types = lo.Filter(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
				return strings.TrimSpace(s)
			}), func(s string, _ int) bool { return s != "" })
		}

		ch, cancel := b.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if len(types) > 0 && !lo.Contains(types, ev.Type) {
					continue
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, payload)
				flusher.Flush()
			}
		}
	}
}
