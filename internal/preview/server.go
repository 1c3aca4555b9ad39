package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/gesture"
	"github.com/ivlev/slideshow/internal/logger"
	"github.com/ivlev/slideshow/internal/player"
	"github.com/ivlev/slideshow/internal/renderer"
)

// ErrUnknownOp is returned for a control operation the server does not know.
var ErrUnknownOp = errors.New("unknown control operation")

// Server exposes a player over HTTP and websocket.
type Server struct {
	player   *player.Player
	hub      *Hub
	mediaDir string
	upgrader websocket.Upgrader

	// TransitionFallback is reported for slides without their own transition.
	TransitionFallback time.Duration

	mu   sync.RWMutex
	deck *deck.Deck
}

// NewServer starts the websocket hub and subscribes to p's frames. Close
// releases both.
func NewServer(p *player.Player, d *deck.Deck, mediaDir string) *Server {
	s := &Server{
		player:             p,
		hub:                NewHub(),
		mediaDir:           mediaDir,
		deck:               d,
		TransitionFallback: engine.DefaultTransitionDuration,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	go s.hub.Run()
	p.Subscribe(player.SinkFunc(s.publish))
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// SetDeck validates d, then swaps it into the player.
func (s *Server) SetDeck(d *deck.Deck) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.deck = d
	s.mu.Unlock()
	return s.player.Reload(d.Slides)
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/deck", s.handleDeck).Methods(http.MethodGet)
	r.HandleFunc("/api/frame", s.handleFrame).Methods(http.MethodGet)
	r.HandleFunc("/api/control/goto/{index:[0-9]+}", s.handleGoTo).Methods(http.MethodPost)
	r.HandleFunc("/api/control/{op}", s.handleControl).Methods(http.MethodPost)
	r.HandleFunc("/api/swipe", s.handleSwipe).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket)
	if s.mediaDir != "" {
		r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(s.mediaDir))))
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close disconnects websocket clients and stops the hub.
func (s *Server) Close() {
	s.hub.Stop()
}

// Apply runs a named control operation on the player. The result reports
// whether navigation happened; play state operations always report true.
func (s *Server) Apply(op string) (bool, error) {
	switch op {
	case "next":
		return s.player.Next(), nil
	case "prev":
		return s.player.Prev(), nil
	case "play":
		s.player.SetPlaying(true)
	case "pause":
		s.player.SetPlaying(false)
	case "toggle":
		s.player.Toggle()
	case "show":
		s.player.OnVisibilityChange(true)
	case "hide":
		s.player.OnVisibilityChange(false)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
	return true, nil
}

// publish is the player sink. It runs under the player lock, so it only
// reads server state and queues the message.
func (s *Server) publish(f engine.Frame) {
	data, err := json.Marshal(s.frameMessage(f))
	if err != nil {
		logger.Warn("encode frame", logger.ErrorField(err))
		return
	}
	s.hub.Broadcast(data)
}

func (s *Server) frameMessage(f engine.Frame) *Message {
	msg := &Message{Type: TypeFrame, Frame: frameJSON(f), Timestamp: time.Now().UnixMilli()}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deck != nil && f.Index < len(s.deck.Slides) && s.deck.Slides[f.Index].ID == f.SlideID {
		v := renderer.Render(s.deck.Slides[f.Index], f)
		msg.View = &v
	}
	return msg
}

type controlResponse struct {
	OK        bool     `json:"ok"`
	Direction string   `json:"direction,omitempty"`
	Message   *Message `json:"state,omitempty"`
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	d := s.deck
	s.mu.RUnlock()
	if d == nil {
		writeError(w, http.StatusNotFound, "no deck loaded")
		return
	}
	writeJSON(w, http.StatusOK, deckJSON(d, s.TransitionFallback))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, ok := s.player.Frame()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "player closed")
		return
	}
	writeJSON(w, http.StatusOK, s.frameMessage(f))
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Apply(mux.Vars(r)["op"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, controlResponse{OK: ok})
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	s.respond(w, controlResponse{OK: s.player.GoTo(index)})
}

type swipeRequest struct {
	Start gesture.Point `json:"start"`
	End   gesture.Point `json:"end"`
}

func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid swipe body")
		return
	}
	dir := s.player.Swipe(req.Start, req.End)
	s.respond(w, controlResponse{OK: dir != gesture.None, Direction: dir.String()})
}

func (s *Server) respond(w http.ResponseWriter, resp controlResponse) {
	if f, ok := s.player.Frame(); ok {
		resp.Message = s.frameMessage(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	c := &Client{
		ID:   uuid.NewString(),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),

		touch: s.player.NewTracker(),
	}
	if f, ok := s.player.Frame(); ok {
		if data, err := json.Marshal(s.frameMessage(f)); err == nil {
			c.send <- data
		}
	}
	s.hub.Register(c)

	go c.writePump()
	go c.readPump(s.handleMessage)
}

// handleMessage applies a command sent over the websocket. The resulting
// frame reaches the client through the normal broadcast.
func (s *Server) handleMessage(c *Client, msg *Message) {
	var err error
	switch msg.Type {
	case TypeControl:
		_, err = s.Apply(msg.Op)
	case TypeGoTo:
		s.player.GoTo(msg.Index)
	case TypeSwipe:
		if msg.Start == nil || msg.End == nil {
			err = errors.New("swipe needs start and end")
			break
		}
		s.player.Swipe(*msg.Start, *msg.End)
	case TypeVisibility:
		if msg.Visible == nil {
			err = errors.New("visibility needs visible")
			break
		}
		s.player.OnVisibilityChange(*msg.Visible)
	case TypeTouch:
		err = s.touch(c, msg)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		logger.Debug("preview command rejected", logger.String("client", c.ID), logger.ErrorField(err))
		if data, mErr := json.Marshal(&Message{Type: TypeError, Error: err.Error()}); mErr == nil {
			c.reply(data)
		}
	}
}

func (s *Server) touch(c *Client, msg *Message) error {
	if msg.Phase == PhaseCancel {
		c.touch.Cancel()
		return nil
	}
	if msg.Point == nil {
		return fmt.Errorf("touch %s needs point", msg.Phase)
	}
	switch msg.Phase {
	case PhaseStart:
		c.touch.Start(*msg.Point)
	case PhaseMove:
		c.touch.Move(*msg.Point)
	case PhaseEnd:
		s.player.Navigate(c.touch.End(*msg.Point))
	default:
		return fmt.Errorf("unknown touch phase %q", msg.Phase)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
