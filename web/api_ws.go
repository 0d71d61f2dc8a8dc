package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/share/ws"
	"github.com/hostpulse/hostpulse/store"
)

var apiUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleLiveWS handles GET /ws/live. Subscribers receive the newest sample
// immediately and then every new one as the broadcaster spots it.
func (al *APIListener) handleLiveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := apiUpgrader.Upgrade(w, req, nil)
	if err != nil {
		al.Errorf("failed to establish WS connection: %v", err)
		return
	}
	wsConn := ws.NewConcurrentWebSocket(conn, al.Logger)

	key := req.RemoteAddr
	al.liveWS.Set(key, wsConn)
	defer al.liveWS.Delete(key)
	defer wsConn.Close()

	if latest, err := al.reader.Latest(); err == nil {
		if err := wsConn.WriteJSON(latest); err != nil {
			return
		}
	}

	// subscribers never send anything useful, reads only notice the
	// peer hanging up
	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastLive polls the store at the sampling interval and pushes every
// new sample to the connected subscribers. Read failures back the poll off
// instead of spinning on a broken store.
func (al *APIListener) broadcastLive(ctx context.Context, interval time.Duration) {
	b := &backoff.Backoff{
		Min:    interval,
		Max:    10 * interval,
		Factor: 2,
		Jitter: true,
	}

	var lastSent time.Time
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		latest, err := al.reader.Latest()
		if err != nil {
			if !errors.Is(err, store.ErrNoSamples) {
				al.Errorf("live feed read: %v", err)
			}
			timer.Reset(b.Duration())
			continue
		}
		b.Reset()

		if latest.Timestamp.After(lastSent) {
			// fresh data makes every cached chart stale at once
			al.cache.Flush()
			al.pushSample(latest)
			lastSent = latest.Timestamp
		}
		timer.Reset(interval)
	}
}

func (al *APIListener) pushSample(sample *models.Sample) {
	al.liveWS.ForEach(func(key string, conn *ws.ConcurrentWebSocket) {
		if err := conn.WriteJSON(sample); err != nil {
			al.Debugf("live push to %s failed: %v", key, err)
		}
	})
}
