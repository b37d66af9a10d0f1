package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ridehail/internal/auth"
	"ridehail/internal/domain"
	"ridehail/internal/logger"
	"ridehail/internal/middleware"
	"ridehail/internal/realtime"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingBinder struct {
	mu    sync.Mutex
	binds map[string]string // userID -> sessionID
}

func (b *recordingBinder) Bind(ctx context.Context, userType, userID, sessionID string) error {
	if userType != "user" && userType != "captain" {
		return errors.New("invalid user type")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.binds[userID] = sessionID
	return nil
}

type recordingLocations struct {
	mu   sync.Mutex
	last map[string]domain.Coordinate
}

func (l *recordingLocations) UpdateLocation(ctx context.Context, captainID string, at domain.Coordinate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[captainID] = at
	return nil
}

func (l *recordingLocations) get(id string) (domain.Coordinate, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.last[id]
	return at, ok
}

// socketServer serves the hub behind the same authentication as the router.
type socketServer struct {
	url    string
	tokens *auth.TokenIssuer
}

func newTestHub(t *testing.T) (*realtime.Hub, *recordingBinder, *recordingLocations, *socketServer) {
	t.Helper()
	binder := &recordingBinder{binds: make(map[string]string)}
	locations := &recordingLocations{last: make(map[string]domain.Coordinate)}
	hub := realtime.NewHub(binder, locations, logger.Discard())

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	router := gin.New()
	router.GET("/ws", middleware.AuthenticateSocket(tokens), gin.WrapF(hub.ServeWS))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return hub, binder, locations, &socketServer{
		url:    "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		tokens: tokens,
	}
}

// dial connects with a token for subject and role passed in the query string.
func (s *socketServer) dial(t *testing.T, subject, role string) *websocket.Conn {
	t.Helper()
	token, err := s.tokens.Issue(subject, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(s.url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteJSON(realtime.Frame{Event: event, Data: raw}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame realtime.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	return frame
}

func join(t *testing.T, conn *websocket.Conn, userType, userID string) string {
	t.Helper()
	writeFrame(t, conn, realtime.FrameJoin, map[string]string{"userId": userID, "userType": userType})
	frame := readFrame(t, conn)
	if frame.Event != realtime.FrameJoined {
		t.Fatalf("expected joined, got %s: %s", frame.Event, frame.Data)
	}
	var ack struct {
		SocketID string `json:"socketId"`
	}
	if err := json.Unmarshal(frame.Data, &ack); err != nil || ack.SocketID == "" {
		t.Fatalf("joined frame without socketId: %s", frame.Data)
	}
	return ack.SocketID
}

func TestHub_JoinBindsSessionAndDelivers(t *testing.T) {
	t.Parallel()

	hub, binder, _, srv := newTestHub(t)
	conn := srv.dial(t, "rider-1", auth.RoleRider)

	sessionID := join(t, conn, "user", "rider-1")

	binder.mu.Lock()
	bound := binder.binds["rider-1"]
	binder.mu.Unlock()
	if bound != sessionID {
		t.Errorf("expected rider bound to %s, got %s", sessionID, bound)
	}

	if err := hub.Send(sessionID, "ride-confirmed", map[string]string{"rideId": "ride-1"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	frame := readFrame(t, conn)
	if frame.Event != "ride-confirmed" {
		t.Errorf("expected ride-confirmed, got %s", frame.Event)
	}
	if !strings.Contains(string(frame.Data), `"rideId":"ride-1"`) {
		t.Errorf("unexpected data %s", frame.Data)
	}
}

func TestHub_SendToUnknownSession(t *testing.T) {
	t.Parallel()

	hub, _, _, _ := newTestHub(t)

	err := hub.Send("nobody", "ride-started", nil)
	if !errors.Is(err, realtime.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestHub_RejectsUnknownUserType(t *testing.T) {
	t.Parallel()

	_, _, _, srv := newTestHub(t)
	conn := srv.dial(t, "x", "admin")

	writeFrame(t, conn, realtime.FrameJoin, map[string]string{"userId": "x", "userType": "admin"})
	if frame := readFrame(t, conn); frame.Event != realtime.FrameError {
		t.Errorf("expected error frame, got %s", frame.Event)
	}
}

func TestHub_CaptainLocationUpdate(t *testing.T) {
	t.Parallel()

	_, _, locations, srv := newTestHub(t)
	conn := srv.dial(t, "c-1", auth.RoleCaptain)
	join(t, conn, "captain", "c-1")

	writeFrame(t, conn, realtime.FrameUpdateLocation, map[string]any{
		"userId":   "c-1",
		"location": map[string]float64{"ltd": 12.97, "lng": 77.59},
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if at, ok := locations.get("c-1"); ok {
			if at.Lat != 12.97 || at.Lng != 77.59 {
				t.Errorf("unexpected location %+v", at)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("location update not received")
}

func TestHub_LocationRequiresCaptainJoin(t *testing.T) {
	t.Parallel()

	_, _, locations, srv := newTestHub(t)
	conn := srv.dial(t, "rider-1", auth.RoleRider)
	join(t, conn, "user", "rider-1")

	writeFrame(t, conn, realtime.FrameUpdateLocation, map[string]any{
		"userId":   "c-1",
		"location": map[string]float64{"ltd": 1, "lng": 1},
	})

	if frame := readFrame(t, conn); frame.Event != realtime.FrameError {
		t.Errorf("expected error frame, got %s", frame.Event)
	}
	if _, ok := locations.get("c-1"); ok {
		t.Error("location must not be stored")
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	t.Parallel()

	hub, _, _, srv := newTestHub(t)
	conn := srv.dial(t, "rider-1", auth.RoleRider)
	sessionID := join(t, conn, "user", "rider-1")

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if errors.Is(hub.Send(sessionID, "ride-ended", nil), realtime.ErrSessionNotFound) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session still registered after disconnect")
}

func TestHub_RequiresToken(t *testing.T) {
	t.Parallel()

	_, _, _, srv := newTestHub(t)

	testCases := []struct {
		name string
		url  string
	}{
		{"no token", srv.url},
		{"forged token", srv.url + "?token=not-a-jwt"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(tc.url, nil)
			if err == nil {
				conn.Close()
				t.Fatal("expected handshake to fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %v", resp)
			}
		})
	}
}

func TestHub_AcceptsBearerHeader(t *testing.T) {
	t.Parallel()

	_, _, _, srv := newTestHub(t)
	token, err := srv.tokens.Issue("rider-1", auth.RoleRider)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(srv.url, http.Header{"Authorization": {"Bearer " + token}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	join(t, conn, "user", "rider-1")
}

func TestHub_RejectsJoinForOtherUser(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		subject  string
		role     string
		userType string
		userID   string
	}{
		{"rider claims another rider", "rider-2", auth.RoleRider, "user", "rider-1"},
		{"rider claims a captain", "rider-1", auth.RoleRider, "captain", "rider-1"},
		{"captain claims another captain", "c-2", auth.RoleCaptain, "captain", "c-1"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, binder, locations, srv := newTestHub(t)
			conn := srv.dial(t, tc.subject, tc.role)

			writeFrame(t, conn, realtime.FrameJoin, map[string]string{"userId": tc.userID, "userType": tc.userType})
			if frame := readFrame(t, conn); frame.Event != realtime.FrameError {
				t.Fatalf("expected error frame, got %s", frame.Event)
			}

			binder.mu.Lock()
			_, bound := binder.binds[tc.userID]
			binder.mu.Unlock()
			if bound {
				t.Errorf("%s must not be bound to this socket", tc.userID)
			}

			// The rejected join grants nothing: location frames still fail.
			writeFrame(t, conn, realtime.FrameUpdateLocation, map[string]any{
				"userId":   tc.userID,
				"location": map[string]float64{"ltd": 1, "lng": 1},
			})
			if frame := readFrame(t, conn); frame.Event != realtime.FrameError {
				t.Errorf("expected error frame, got %s", frame.Event)
			}
			if _, ok := locations.get(tc.userID); ok {
				t.Error("location must not be stored")
			}
		})
	}
}
