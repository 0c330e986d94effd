package remote

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Subscription is one live hookup to the change feed. Close tears the
// socket and the read loop down; remounting without closing first
// would stack duplicate handlers, so don't.
type Subscription struct {
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe dials the change feed and runs onChange once per "changed"
// frame, from a dedicated goroutine. Frames carry nothing, so the
// callback's whole job is to trigger a refetch; running it redundantly
// is harmless.
func (t *Table) Subscribe(onChange func()) (*Subscription, error) {
	wsURL := strings.Replace(t.baseURL, "http", "ws", 1) + "/api/changes"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("(*Table).Subscribe: %w (%s)", err, resp.Status)
		}
		return nil, fmt.Errorf("(*Table).Subscribe: %w", err)
	}

	sub := &Subscription{
		conn: conn,
		done: make(chan struct{}),
	}
	go func() {
		defer close(sub.done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			onChange()
		}
	}()
	return sub, nil
}

// Close shuts the feed down and waits for the read loop to exit, so no
// onChange call can land after Close returns.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
	<-s.done
}
