package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/obitus-ai/contextd/internal/manager"
	"github.com/obitus-ai/contextd/pkg/message"
)

func TestStatsStream(t *testing.T) {
	t.Parallel()

	mgr := manager.New(manager.Config{}, nil, nil, nil, nil)
	mgr.AddMessage(context.Background(), "conv-1", "hello", "u-1", message.SenderUser, nil)

	g := New(Config{BearerToken: testToken, StatsInterval: 50 * time.Millisecond}, mgr, nil, nil, nil, nil)
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/stats"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testToken}},
	})
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	// The first frame arrives immediately, before any tick.
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("reading first frame: %v", err)
	}
	if typ != websocket.MessageText {
		t.Errorf("frame type = %v, want text", typ)
	}
	var stats manager.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("frame is not stats JSON: %v", err)
	}
	if stats.ActiveBuffers != 1 {
		t.Errorf("ActiveBuffers = %d, want 1", stats.ActiveBuffers)
	}

	// Subsequent frames follow on the ticker.
	if _, _, err := conn.Read(ctx); err != nil {
		t.Fatalf("reading second frame: %v", err)
	}
}

func TestStatsStreamRequiresAuth(t *testing.T) {
	t.Parallel()

	mgr := manager.New(manager.Config{}, nil, nil, nil, nil)
	g := New(Config{BearerToken: testToken}, mgr, nil, nil, nil, nil)
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/stats"
	_, resp, err := websocket.Dial(ctx, wsURL, nil)
	if err == nil {
		t.Fatal("unauthenticated dial succeeded")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake status = %d, want 401", resp.StatusCode)
	}
}
