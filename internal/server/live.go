package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/pipeline"
	"github.com/matzehuels/boardviz/pkg/render"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Frame is one message on a live stream. A frame is sent for the first draw
// and then whenever the SVG changes.
type Frame struct {
	ID    string       `json:"id"`
	Scene string       `json:"scene"`
	Hash  string       `json:"hash"`
	Stats render.Stats `json:"stats"`
	SVG   string       `json:"svg,omitempty"`
	Error string       `json:"error,omitempty"`
}

// handleLive upgrades to a websocket and redraws the scene every poll
// interval, pushing a frame when the drawing changes.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	opts, err := s.sceneOptions(r, pipeline.FormatSVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readLoop(conn, cancel)

	logger := s.logger.With("scene", opts.Scene, "remote", r.RemoteAddr)
	logger.Debug("live stream opened")
	defer logger.Debug("live stream closed")

	poll := time.NewTicker(s.opts.PollInterval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var last string
	for {
		frame, changed := s.drawFrame(ctx, opts, last)
		if changed {
			last = frame.Hash
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				logger.Debug("live write failed", "err", err)
				return
			}
		}
		if !s.waitPoll(ctx, conn, poll, ping) {
			return
		}
	}
}

// waitPoll blocks until the next poll tick, pinging the client meanwhile.
// It returns false when the stream should end.
func (s *Server) waitPoll(ctx context.Context, conn *websocket.Conn, poll, ping *time.Ticker) bool {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return false
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return false
			}
		case <-poll.C:
			return true
		}
	}
}

// drawFrame runs one full redraw. changed reports whether the frame differs
// from the previous one; errors are sent as frames once per distinct message.
func (s *Server) drawFrame(ctx context.Context, opts pipeline.Options, last string) (Frame, bool) {
	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return Frame{}, false
		}
		msg := apperr.UserMessage(err)
		return Frame{Scene: opts.Scene, Hash: "error:" + msg, Error: msg}, last != "error:"+msg
	}
	return Frame{
		ID:    result.ID,
		Scene: result.Scene,
		Hash:  result.SVGHash,
		Stats: result.Draw,
		SVG:   string(result.Artifacts[pipeline.FormatSVG]),
	}, result.SVGHash != last
}

// readLoop drains client messages so control frames are processed, and
// cancels the stream when the client goes away.
func (s *Server) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("live read error", "err", err)
			}
			return
		}
	}
}
