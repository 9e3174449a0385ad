// Package wsclient implements the venue-agnostic WebSocket session state
// machine from spec §4.7: connect, heartbeat, exponential-backoff reconnect,
// and raw message dispatch to a caller-supplied handler. It is grounded on
// BinanceAdapter's wsConns/connectAndStream loop in
// src/infrastructure/datafacade/adapters/binance_adapter.go (dial, read
// pump, reconnect-after-delay) generalized into an explicit state machine,
// and on gateio_ws_common.py's custom heartbeat loop (a venue-level ping
// message independent of the protocol-level ping/pong) for the heartbeat
// shape.
package wsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// State is a position in the WS session state machine from spec §4.7:
// Disconnected -> Connecting -> Connected -> (Authenticated?) -> Subscribed -> Disconnected.
// Session itself only moves between Disconnected, Connecting and Connected;
// it never enters StateAuthenticated or StateSubscribed.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticated
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateSubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// Config tunes one venue's WS session.
type Config struct {
	Venue               string
	URL                 string
	PingInterval        time.Duration // default 20s per spec §4.7
	PongTimeout         time.Duration // missed-heartbeat-window detector
	ReconnectDelay      time.Duration
	ReconnectBackoff    float64
	MaxReconnectDelay   time.Duration
	MaxReconnectAttempts int // 0 means unlimited
	// BuildPing returns the venue-specific application-level ping payload
	// (e.g. Gate.io's {time,channel:"ping",event:"ping"}); MEXC uses a
	// differently-shaped ping appropriate to its own WS dialect. nil means
	// the protocol-level ping is relied on instead.
	BuildPing func() any
}

func (c Config) withDefaults() Config {
	if c.PingInterval == 0 {
		c.PingInterval = 20 * time.Second
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = 2 * c.PingInterval
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 1 * time.Second
	}
	if c.ReconnectBackoff == 0 {
		c.ReconnectBackoff = 2.0
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
	return c
}

// Handlers are the callbacks a Session's reader loop invokes. OnMessage
// receives every decoded frame; OnReconnect fires after a successful
// reconnect so the caller (the channel registry, normally) can replay
// subscriptions and re-authenticate private channels.
type Handlers struct {
	OnMessage   func(data []byte)
	OnReconnect func(ctx context.Context) error
	OnStateChange func(State)
}

// Session is one venue's WebSocket connection, heartbeat, and reconnect
// loop. A single send goroutine serializes writes; reads fan out through
// Handlers.OnMessage, per the shared-resource policy in spec §5.
type Session struct {
	cfg      Config
	handlers Handlers
	log      zerolog.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	state       State
	lastPong    time.Time
	sendCh      chan []byte
	closed      chan struct{}
}

func New(cfg Config, handlers Handlers, log zerolog.Logger) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		cfg:      cfg,
		handlers: handlers,
		log:      log.With().Str("venue", cfg.Venue).Logger(),
		state:    StateDisconnected,
		sendCh:   make(chan []byte, 256),
		closed:   make(chan struct{}),
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	if s.handlers.OnStateChange != nil {
		s.handlers.OnStateChange(st)
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run drives the connect/heartbeat/reconnect loop until ctx is cancelled.
// It never returns an error for a connection drop: failures are logged and
// retried with exponential backoff per spec §4.7, capped at
// MaxReconnectAttempts (0 = unlimited). It returns only when ctx is done or
// the attempt cap is exhausted.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.closed)
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		isReconnect := attempt > 0
		if err := s.connectOnce(ctx, isReconnect); err != nil {
			attempt++
			if s.cfg.MaxReconnectAttempts > 0 && attempt > s.cfg.MaxReconnectAttempts {
				return fmt.Errorf("wsclient %s: exceeded max reconnect attempts: %w", s.cfg.Venue, err)
			}
			delay := s.backoffDelay(attempt)
			s.log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("ws connect failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		// connectOnce blocks for the life of one connection; a clean return
		// means the read loop ended (remote close, decode-loop exit, or
		// heartbeat timeout) and we should reconnect from the top.
		attempt++
	}
}

func (s *Session) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(s.cfg.ReconnectDelay) * pow(s.cfg.ReconnectBackoff, attempt-1))
	if delay > s.cfg.MaxReconnectDelay {
		delay = s.cfg.MaxReconnectDelay
	}
	return delay
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

// connectOnce dials, starts the heartbeat and send pump, and runs the read
// loop until the connection drops or ctx is cancelled.
func (s *Session) connectOnce(ctx context.Context, isReconnect bool) error {
	s.setState(StateConnecting)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.lastPong = time.Now()
	s.mu.Unlock()

	conn.SetPongHandler(func(string) error {
		s.mu.Lock()
		s.lastPong = time.Now()
		s.mu.Unlock()
		return nil
	})

	s.setState(StateConnected)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.sendLoop(connCtx, conn) }()
	go func() { defer wg.Done(); s.heartbeatLoop(connCtx, cancel) }()

	if isReconnect && s.handlers.OnReconnect != nil {
		if err := s.handlers.OnReconnect(ctx); err != nil {
			s.log.Error().Err(err).Msg("reconnect replay failed")
		}
	}

	readErr := s.readLoop(connCtx, conn)
	cancel()
	wg.Wait()

	conn.Close()
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
	s.setState(StateDisconnected)
	return readErr
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		// Any inbound frame, including a venue's application-level pong,
		// counts as heartbeat liveness.
		s.mu.Lock()
		s.lastPong = time.Now()
		s.mu.Unlock()
		if s.handlers.OnMessage != nil {
			s.handlers.OnMessage(data)
		}
	}
}

// sendLoop is the single writer goroutine that serializes outbound frames,
// per the shared-resource policy in spec §5 ("writes are serialized through
// a single send task").
func (s *Session) sendLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.sendCh:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug().Err(err).Msg("ws write failed")
				return
			}
		}
	}
}

// heartbeatLoop sends the venue-specific application-level ping at
// PingInterval and monitors PongTimeout; missing two heartbeat windows
// triggers a reconnect by cancelling the connection's context, per spec
// §4.7.
func (s *Session) heartbeatLoop(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			sincePong := time.Since(s.lastPong)
			s.mu.Unlock()
			if sincePong > s.cfg.PongTimeout {
				s.log.Warn().Dur("sincePong", sincePong).Msg("missed heartbeat windows, forcing reconnect")
				cancel()
				return
			}
			if s.cfg.BuildPing != nil {
				payload, err := json.Marshal(s.cfg.BuildPing())
				if err != nil {
					s.log.Error().Err(err).Msg("encoding heartbeat ping")
					continue
				}
				s.Send(payload)
			} else {
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}
}

// Send enqueues a raw frame for the single writer goroutine. It does not
// block the caller beyond the channel buffer; a full buffer indicates a
// stuck connection and the frame is dropped with a logged warning rather
// than blocking indefinitely.
func (s *Session) Send(payload []byte) {
	select {
	case s.sendCh <- payload:
	default:
		s.log.Warn().Msg("ws send buffer full, dropping outbound frame")
	}
}

// SendJSON marshals v and enqueues it.
func (s *Session) SendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Send(b)
	return nil
}

// Done returns a channel closed when Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}
