package route

import (
	"log/slog"
	"net/http"
	"time"

	"potluck/src-server/utils"

	"github.com/gorilla/websocket"
)

const (
	changesWriteWait  = 10 * time.Second
	changesPingPeriod = 30 * time.Second
	changedFrameText  = "changed"
)

var changesUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the form client connects from anywhere the server is reachable
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Changes streams one "changed" text frame per mutation of the
// responses table. No payload, no ordering promises; clients refetch.
func Changes(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /api/changes", func(w http.ResponseWriter, r *http.Request) {
		conn, err := changesUpgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("can't upgrade change feed connection", "error", err)
			return
		}
		defer conn.Close()

		sub := as.Hub.Subscribe()
		defer as.Hub.Unsubscribe(sub)

		// the client never sends anything meaningful; the read loop
		// only notices the disconnect
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		pingTicker := time.NewTicker(changesPingPeriod)
		defer pingTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				return
			case <-gone:
				return
			case <-sub:
				if err := conn.WriteMessage(websocket.TextMessage, []byte(changedFrameText)); err != nil {
					slog.Debug("change feed subscriber dropped", "error", err)
					return
				}
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(changesWriteWait)); err != nil {
					slog.Debug("change feed subscriber not answering pings", "error", err)
					return
				}
			}
		}
	})
}
