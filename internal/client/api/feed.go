package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
)

// Subscribe opens the websocket change feed, scoped by the session token's
// workspace, for the given collections.
func (c *HTTPClient) Subscribe(ctx context.Context, collections []string) (Feed, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/realtime"

	q := url.Values{}
	q.Set("token", c.accessToken())
	q.Set("collections", strings.Join(collections, ","))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	f := &wsFeed{
		conn:   conn,
		events: make(chan models.Event, 32),
	}
	go f.readLoop()
	return f, nil
}

type wsFeed struct {
	conn   *websocket.Conn
	events chan models.Event

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

func (f *wsFeed) Events() <-chan models.Event { return f.events }

func (f *wsFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *wsFeed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = f.conn.WriteMessage(websocket.CloseMessage, msg)
		err = f.conn.Close()
	})
	return err
}

func (f *wsFeed) readLoop() {
	defer close(f.events)
	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			f.mu.Lock()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				f.err = err
			}
			f.mu.Unlock()
			return
		}

		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		f.events <- ev
	}
}
