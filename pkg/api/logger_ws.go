package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ws "github.com/coder/websocket"

	"github.com/percylabs/percyd/pkg/logging"
)

// logFrame is an inbound relay frame from a browser SDK. Messages carry
// pre-buffered client-side records; Log, when present, is a primary log
// call of the form [level, message].
type logFrame struct {
	Log      []any             `json:"log,omitempty"`
	Messages []logging.Message `json:"messages,omitempty"`
}

// handleLoggerSocket upgrades GET /logger to a WebSocket and relays inbound
// frames into the shared logger. The current log level is sent immediately
// on connect so clients can filter locally.
func (s *Server) handleLoggerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		// Local trusted use only; SDK pages run on arbitrary origins.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Debug("log relay accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	hello, _ := json.Marshal(map[string]string{"loglevel": s.facility.Level()})
	if err := conn.Write(ctx, ws.MessageText, hello); err != nil {
		return
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var frame logFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Debug("invalid log relay frame", "error", err)
			continue
		}
		s.relayFrame(frame)
	}
}

// relayFrame appends the frame's buffered messages in order, then emits the
// primary log call if one was sent.
func (s *Server) relayFrame(frame logFrame) {
	for _, m := range frame.Messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}
		s.facility.Buffer().Append(m)
	}

	if len(frame.Log) == 0 {
		return
	}
	level, _ := frame.Log[0].(string)
	msg := ""
	if len(frame.Log) > 1 {
		switch v := frame.Log[1].(type) {
		case string:
			msg = v
		default:
			msg = fmt.Sprint(v)
		}
	}
	s.facility.Log(level, msg)
}
