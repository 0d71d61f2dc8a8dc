package ws_test

import (
	"os"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/ws"
)

func testLogger() *logger.Logger {
	return logger.NewLogger("websocket-test", logger.LogOutput{File: os.Stdout}, logger.LogLevelDebug)
}

func TestConcurrentWrites(t *testing.T) {
	mockConn := &connMock{}
	sock := ws.NewConcurrentWebSocket(mockConn, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, sock.WriteMessage(websocket.TextMessage, []byte("test")))
			require.NoError(t, sock.WriteJSON(1))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, mockConn.writes())
	assert.False(t, mockConn.Closed)

	require.NoError(t, sock.Close())
	assert.True(t, mockConn.Closed)
}

func TestWebSocketCache(t *testing.T) {
	cache := ws.NewWebSocketCache()
	a := &connMock{}
	b := &connMock{}
	cache.Set("a", ws.NewConcurrentWebSocket(a, testLogger()))
	cache.Set("b", ws.NewConcurrentWebSocket(b, testLogger()))
	assert.Equal(t, 2, cache.Len())
	assert.NotNil(t, cache.Get("a"))

	seen := map[string]bool{}
	cache.ForEach(func(key string, _ *ws.ConcurrentWebSocket) {
		seen[key] = true
	})
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)

	cache.Delete("a")
	assert.Nil(t, cache.Get("a"))
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.CloseConnections())
	assert.True(t, b.Closed)
}

type connMock struct {
	ws.Conn

	mu         sync.Mutex
	writeCalls int
	Closed     bool
}

func (c *connMock) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

func (c *connMock) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeCalls++
	return nil
}

func (c *connMock) WriteJSON(jsonOutboundMsg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeCalls++
	return nil
}

func (c *connMock) writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeCalls
}
