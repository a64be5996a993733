package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"nhooyr.io/websocket"

	"github.com/yingjunnan/ChatBox/pkg/metrics"
)

// TestConnSendFullBufferClosesSlow covers the slow-consumer policy: once the
// outbound buffer is full, Send reports failure, the fanout drop counter
// moves, and the connection is closed with a try-again-later status so its
// own read loop deregisters it.
func TestConnSendFullBufferClosesSlow(t *testing.T) {
	serverConn := make(chan *Conn, 1)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/{room_id}", func(w http.ResponseWriter, r *http.Request) {
		ws, err := Accept(w, r)
		if err != nil {
			return
		}
		serverConn <- NewConn(ws, "r1", Identity{DisplayName: "slow", Guest: true})
		<-done // keep the socket alive for the test body
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := dial(t, ctx, srv, "/ws/r1")

	var c *Conn
	select {
	case c = <-serverConn:
	case <-ctx.Done():
		t.Fatal("server never produced a connection")
	}

	// No WriteLoop draining: every Send queues until the buffer is full.
	for i := 0; i < cap(c.out); i++ {
		if !c.Send([]byte("x")) {
			t.Fatalf("Send %d failed with buffer space left", i)
		}
	}

	reg := NewRegistry()
	reg.Register(c, "r1")

	drops := testutil.ToFloat64(metrics.BroadcastDropsTotal)
	reg.Broadcast("r1", []byte("overflow"))
	if got := testutil.ToFloat64(metrics.BroadcastDropsTotal) - drops; got != 1 {
		t.Errorf("drop counter moved by %v, want 1", got)
	}

	// direct sends keep failing once the member has been marked slow
	if c.Send([]byte("more")) {
		t.Error("Send on a full buffer reported success")
	}

	// the peer observes the try-again-later close
	_, _, err := client.Read(ctx)
	if err == nil {
		t.Fatal("expected close, got a frame")
	}
	if got := websocket.CloseStatus(err); got != websocket.StatusTryAgainLater {
		t.Errorf("close status = %v, want %v", got, websocket.StatusTryAgainLater)
	}
}
