package ingress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cfoust/padlink/pkg/protocol"
	"github.com/cfoust/padlink/pkg/sink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type collector struct {
	mutex    sync.Mutex
	messages []protocol.ControlMessage
}

func (c *collector) Handle(ctx context.Context, message protocol.ControlMessage) error {
	c.mutex.Lock()
	c.messages = append(c.messages, message)
	c.mutex.Unlock()
	return nil
}

func (c *collector) Messages() []protocol.ControlMessage {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]protocol.ControlMessage(nil), c.messages...)
}

var _ sink.Sink = (*collector)(nil)

func startServer(t *testing.T) (*WSIngress, *collector, string) {
	t.Helper()

	target := &collector{}
	ingress := NewWSIngress(target)
	server := httptest.NewServer(ingress)
	t.Cleanup(server.Close)

	return ingress, target, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	return conn
}

func write(t *testing.T, conn *websocket.Conn, typ websocket.MessageType, data []byte) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, typ, data))
}

// waitForClose reads until the server closes the connection and returns
// the close status.
func waitForClose(t *testing.T, conn *websocket.Conn) websocket.StatusCode {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		_, _, err := conn.Read(ctx)
		if err != nil {
			return websocket.CloseStatus(err)
		}
	}
}

func TestAcceptsValidCommands(t *testing.T) {
	ingress, target, url := startServer(t)
	conn := dial(t, url)

	write(t, conn, websocket.MessageText, []byte(`{"x":0.5,"y":-0.99997,"z":0,"rot":0}`))

	msg, err := protocol.NewControlMessage(0, 0, 1, -1)
	require.NoError(t, err)
	data, err := protocol.CBOR.Encode(msg)
	require.NoError(t, err)
	write(t, conn, websocket.MessageBinary, data)

	require.Eventually(t, func() bool {
		return len(target.Messages()) == 2
	}, time.Second, 5*time.Millisecond)

	messages := target.Messages()
	assert.Equal(t, 0.5, messages[0].X())
	assert.Equal(t, -0.99997, messages[0].Y())
	assert.Equal(t, msg, messages[1])
	assert.True(t, ingress.Active())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool {
		return !ingress.Active()
	}, time.Second, 5*time.Millisecond)
}

func TestRejectsOutOfRange(t *testing.T) {
	ingress, target, url := startServer(t)
	conn := dial(t, url)

	write(t, conn, websocket.MessageText, []byte(`{"x":1.5,"y":0,"z":0,"rot":0}`))
	// Anything after the invalid command is never forwarded.
	_ = conn.Write(context.Background(), websocket.MessageText, []byte(`{"x":0,"y":0,"z":0,"rot":0}`))

	assert.Equal(t, websocket.StatusPolicyViolation, waitForClose(t, conn))
	assert.Empty(t, target.Messages())

	// The slot is free again for a new controller.
	require.Eventually(t, func() bool {
		return !ingress.Active()
	}, time.Second, 5*time.Millisecond)

	next := dial(t, url)
	defer next.Close(websocket.StatusNormalClosure, "")
	write(t, next, websocket.MessageText, []byte(`{"x":0,"y":0,"z":0,"rot":0}`))
	require.Eventually(t, func() bool {
		return len(target.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRejectsMalformed(t *testing.T) {
	_, target, url := startServer(t)

	for _, payload := range []string{
		`{"x":0,"y":0}`,
		`hello`,
		`{"x":0,"y":0,"z":0,"rot":0}}`,
		`{"x":0,"y":0,"z":0,"rot":0}]`,
		`{"X":0.5,"Y":0,"Z":0,"ROT":0}`,
	} {
		conn := dial(t, url)
		write(t, conn, websocket.MessageText, []byte(payload))
		assert.Equal(t, websocket.StatusPolicyViolation, waitForClose(t, conn), payload)
	}

	msg, err := protocol.NewControlMessage(0, 0, 0, 0)
	require.NoError(t, err)
	data, err := protocol.CBOR.Encode(msg)
	require.NoError(t, err)

	conn := dial(t, url)
	write(t, conn, websocket.MessageBinary, append(data, 0x01))
	assert.Equal(t, websocket.StatusPolicyViolation, waitForClose(t, conn))

	assert.Empty(t, target.Messages())
}

func TestSingleConnection(t *testing.T) {
	_, _, url := startServer(t)

	first := dial(t, url)
	defer first.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
