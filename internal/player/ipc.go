package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	PropertyTimePos  = "time-pos"
	PropertyDuration = "duration"

	statusSuccess   = "success"
	maxResponseSize = 64 * 1024
)

var (
	ErrEndpointMissing = errors.New("control endpoint missing")
	ErrStatus          = errors.New("player returned error status")
)

type request struct {
	Command []any `json:"command"`
}

type response struct {
	Error *string         `json:"error"`
	Data  json.RawMessage `json:"data"`
	Event string          `json:"event"`
}

// QueryResult is the outcome of one property query. OK is false on any
// failure, and Value is then nil.
type QueryResult struct {
	Value any
	OK    bool
	Err   error
}

// Query fetches one property. It never blocks longer than the query timeout
// and never returns an error to the caller: failures come back as OK=false.
func (h *Handle) Query(property string) QueryResult {
	if h == nil {
		return QueryResult{Err: ErrEndpointMissing}
	}

	h.queryMu.Lock()
	defer h.queryMu.Unlock()

	value, err := h.roundTrip(request{Command: []any{"get_property", property}})
	if err != nil {
		h.log.Trace().Str("property", property).Err(err).Msg("query failed")
		return QueryResult{Err: err}
	}
	return QueryResult{Value: value, OK: true}
}

// Float queries a numeric property, returning 0 on any failure.
func (h *Handle) Float(property string) float64 {
	result := h.Query(property)
	if !result.OK {
		return 0
	}
	f, ok := result.Value.(float64)
	if !ok {
		return 0
	}
	return f
}

func (h *Handle) TimePos() float64 {
	return h.Float(PropertyTimePos)
}

func (h *Handle) Duration() float64 {
	return h.Float(PropertyDuration)
}

func (h *Handle) roundTrip(req request) (any, error) {
	if !h.Ready() {
		return nil, ErrEndpointMissing
	}

	deadline := time.Now().Add(h.queryTimeout)

	conn, err := net.DialTimeout("unix", h.endpoint, h.queryTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	err = conn.SetDeadline(deadline)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	payload = append(payload, '\n')

	_, err = conn.Write(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReaderSize(conn, 4096)
	for {
		line, err := readLine(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		value, isEvent, err := decodeResponse(line)
		if isEvent {
			// mpv broadcasts events to every client, skip them
			continue
		}
		return value, err
	}
}

func readLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > maxResponseSize {
			return nil, errors.New("response too large")
		}
		if !isPrefix {
			return line, nil
		}
	}
}

// decodeResponse parses one response line. Only an "error":"success" reply
// carries a usable value.
func decodeResponse(line []byte) (value any, isEvent bool, err error) {
	var resp response
	err = json.Unmarshal(line, &resp)
	if err != nil {
		return nil, false, fmt.Errorf("malformed response: %w", err)
	}

	if resp.Event != "" && resp.Error == nil {
		return nil, true, nil
	}

	if resp.Error == nil {
		return nil, false, errors.New("response has no status")
	}
	if *resp.Error != statusSuccess {
		return nil, false, fmt.Errorf("%w: %s", ErrStatus, *resp.Error)
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, false, nil
	}

	err = json.Unmarshal(resp.Data, &value)
	if err != nil {
		return nil, false, fmt.Errorf("malformed data: %w", err)
	}

	return value, false, nil
}
