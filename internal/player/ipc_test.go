package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func shortTempDir(t *testing.T) string {
	t.Helper()
	// unix socket paths are limited to ~108 bytes
	dir, err := os.MkdirTemp("", "lr")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// serveFake answers every request line with reply(property).
func serveFake(t *testing.T, path string, reply func(property string) string) {
	t.Helper()
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				line, err := bufio.NewReader(c).ReadBytes('\n')
				if err != nil {
					return
				}
				var req struct {
					Command []any `json:"command"`
				}
				if json.Unmarshal(line, &req) != nil || len(req.Command) != 2 {
					_, _ = c.Write([]byte(`{"error":"invalid parameter"}` + "\n"))
					return
				}
				property, _ := req.Command[1].(string)
				out := reply(property)
				if out != "" {
					_, _ = c.Write([]byte(out + "\n"))
				}
			}(conn)
		}
	}()
}

func TestQueryMissingEndpoint(t *testing.T) {
	h := newHandle(filepath.Join(shortTempDir(t), "nope.sock"), 100*time.Millisecond, zerolog.Nop())

	start := time.Now()
	result := h.Query(PropertyTimePos)
	if result.OK || result.Value != nil {
		t.Errorf("expected neutral result, got %+v", result)
	}
	if !errors.Is(result.Err, ErrEndpointMissing) {
		t.Errorf("expected ErrEndpointMissing, got %v", result.Err)
	}
	if h.TimePos() != 0 {
		t.Error("TimePos should be 0 without an endpoint")
	}
	if time.Since(start) > time.Second {
		t.Error("query on a missing endpoint should return immediately")
	}
}

func TestQueryNilHandle(t *testing.T) {
	var h *Handle
	if h.Query(PropertyDuration).OK || h.Duration() != 0 || h.IsAlive() || h.Ready() {
		t.Error("nil handle should be inert")
	}
	h.Stop()
}

func TestQuerySuccess(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "mpv.sock")
	serveFake(t, path, func(property string) string {
		switch property {
		case PropertyTimePos:
			return `{"event":"playback-restart"}` + "\n" + `{"data":12.5,"error":"success"}`
		case PropertyDuration:
			return `{"data":200,"error":"success","request_id":0}`
		}
		return `{"error":"property not found"}`
	})

	h := newHandle(path, 500*time.Millisecond, zerolog.Nop())
	if got := h.TimePos(); got != 12.5 {
		t.Errorf("TimePos() = %v, want 12.5", got)
	}
	if got := h.Duration(); got != 200 {
		t.Errorf("Duration() = %v, want 200", got)
	}

	result := h.Query("volume")
	if result.OK || !errors.Is(result.Err, ErrStatus) {
		t.Errorf("expected error status result, got %+v", result)
	}
}

func TestQueryNeutralOnBadReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"malformed json", `{"data":`},
		{"missing status", `{"data":3}`},
		{"string data", `{"data":"soon","error":"success"}`},
		{"null data", `{"data":null,"error":"success"}`},
		{"no reply", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(shortTempDir(t), "mpv.sock")
			serveFake(t, path, func(string) string { return tc.reply })

			h := newHandle(path, 150*time.Millisecond, zerolog.Nop())
			start := time.Now()
			if got := h.TimePos(); got != 0 {
				t.Errorf("TimePos() = %v, want 0", got)
			}
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Errorf("query took %v, should be bounded by its timeout", elapsed)
			}
		})
	}
}

// serveStalled accepts connections and never answers a request. With events
// set it keeps writing event lines instead of staying silent.
func serveStalled(t *testing.T, path string, events bool) {
	t.Helper()
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	stop := make(chan struct{})
	t.Cleanup(func() {
		close(stop)
		_ = ln.Close()
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				ticker := time.NewTicker(10 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return
					case <-ticker.C:
					}
					if !events {
						continue
					}
					if _, err := c.Write([]byte(`{"event":"audio-reconfig"}` + "\n")); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
}

func TestQueryTimesOutOnStalledPlayer(t *testing.T) {
	const timeout = 200 * time.Millisecond

	tests := []struct {
		name   string
		events bool
	}{
		{"silent", false},
		{"only events", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(shortTempDir(t), "mpv.sock")
			serveStalled(t, path, tc.events)

			h := newHandle(path, timeout, zerolog.Nop())

			start := time.Now()
			pos := h.TimePos()
			elapsed := time.Since(start)

			if pos != 0 {
				t.Errorf("TimePos() = %v, want 0", pos)
			}
			if elapsed < timeout/2 {
				t.Errorf("query returned after %v, before the timeout could fire", elapsed)
			}
			if elapsed > timeout+300*time.Millisecond {
				t.Errorf("query took %v, want about %v", elapsed, timeout)
			}

			result := h.Query(PropertyDuration)
			if result.OK || result.Err == nil {
				t.Errorf("expected a failed result, got %+v", result)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	value, isEvent, err := decodeResponse([]byte(`{"event":"idle"}`))
	if !isEvent || err != nil || value != nil {
		t.Errorf("event line: %v %v %v", value, isEvent, err)
	}

	value, _, err = decodeResponse([]byte(`{"error":"success","data":{"a":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := value.(map[string]any); !ok || m["a"] != float64(1) {
		t.Errorf("unexpected object value %#v", value)
	}
}
