package live

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// ServeWS upgrades the request and runs it as a hub client until it disconnects.
// originPatterns restricts cross-origin dashboards; empty allows same-origin only.
func ServeWS(hub *Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			hub.logger.Warn().Err(err).Msg("websocket accept")
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn).Run(r.Context())
	}
}
