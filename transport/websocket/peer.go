package websocket

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const closeGracePeriod = time.Second

// Peer adapts a websocket connection to the text channel a game session talks to.
// Reads and writes may each be driven by one goroutine at a time.
type Peer struct {
	conn        *websocket.Conn
	addr        string
	readTimeout time.Duration
}

func NewPeer(conn *websocket.Conn, readTimeout time.Duration) *Peer {
	return &Peer{
		conn:        conn,
		addr:        conn.RemoteAddr().String(),
		readTimeout: readTimeout,
	}
}

func (that *Peer) Addr() string {
	return that.addr
}

func (that *Peer) Send(text string) error {
	if err := that.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Receive returns the next text message. A binary message yields an empty string,
// which no move parser accepts.
func (that *Peer) Receive() (string, error) {
	if that.readTimeout > 0 {
		if err := that.conn.SetReadDeadline(time.Now().Add(that.readTimeout)); err != nil {
			return "", fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	messageType, data, err := that.conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}

	if messageType != websocket.TextMessage {
		return "", nil
	}

	return string(data), nil
}

// Close sends a normal closure frame and releases the connection.
func (that *Peer) Close() error {
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")

	// the other side may already be gone
	_ = that.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGracePeriod))

	if err := that.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
