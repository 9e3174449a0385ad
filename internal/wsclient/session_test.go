package wsclient

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfig_WithDefaults(t *testing.T) {
	c := Config{Venue: "mexc", URL: "wss://example"}.withDefaults()

	if c.PingInterval != 20*time.Second {
		t.Errorf("PingInterval = %v, want 20s", c.PingInterval)
	}
	if c.PongTimeout != 40*time.Second {
		t.Errorf("PongTimeout = %v, want 2x PingInterval (40s)", c.PongTimeout)
	}
	if c.ReconnectDelay != time.Second {
		t.Errorf("ReconnectDelay = %v, want 1s", c.ReconnectDelay)
	}
	if c.ReconnectBackoff != 2.0 {
		t.Errorf("ReconnectBackoff = %v, want 2.0", c.ReconnectBackoff)
	}
	if c.MaxReconnectDelay != 30*time.Second {
		t.Errorf("MaxReconnectDelay = %v, want 30s", c.MaxReconnectDelay)
	}
}

func TestConfig_WithDefaults_PreservesExplicitValues(t *testing.T) {
	c := Config{
		PingInterval:      5 * time.Second,
		PongTimeout:       7 * time.Second,
		ReconnectDelay:    500 * time.Millisecond,
		ReconnectBackoff:  1.5,
		MaxReconnectDelay: 10 * time.Second,
	}.withDefaults()

	if c.PingInterval != 5*time.Second {
		t.Errorf("PingInterval overridden: %v", c.PingInterval)
	}
	if c.PongTimeout != 7*time.Second {
		t.Errorf("PongTimeout overridden: %v", c.PongTimeout)
	}
	if c.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("ReconnectDelay overridden: %v", c.ReconnectDelay)
	}
	if c.ReconnectBackoff != 1.5 {
		t.Errorf("ReconnectBackoff overridden: %v", c.ReconnectBackoff)
	}
	if c.MaxReconnectDelay != 10*time.Second {
		t.Errorf("MaxReconnectDelay overridden: %v", c.MaxReconnectDelay)
	}
}

func TestPow(t *testing.T) {
	cases := []struct {
		base float64
		exp  int
		want float64
	}{
		{2.0, 0, 1.0},
		{2.0, 1, 2.0},
		{2.0, 4, 16.0},
		{1.5, 3, 3.375},
	}
	for _, tc := range cases {
		if got := pow(tc.base, tc.exp); got != tc.want {
			t.Errorf("pow(%v, %v) = %v, want %v", tc.base, tc.exp, got, tc.want)
		}
	}
}

func TestSession_BackoffDelay(t *testing.T) {
	s := New(Config{
		Venue:             "mexc",
		ReconnectDelay:    time.Second,
		ReconnectBackoff:  2.0,
		MaxReconnectDelay: 10 * time.Second,
	}, Handlers{}, zerolog.Nop())

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped at MaxReconnectDelay
		{10, 10 * time.Second},
	}
	for _, tc := range cases {
		if got := s.backoffDelay(tc.attempt); got != tc.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestSession_InitialState(t *testing.T) {
	s := New(Config{Venue: "mexc"}, Handlers{}, zerolog.Nop())
	if s.State() != StateDisconnected {
		t.Errorf("initial State() = %v, want StateDisconnected", s.State())
	}
}

func TestSession_SetStateFiresOnStateChange(t *testing.T) {
	seen := make(chan State, 1)
	s := New(Config{Venue: "mexc"}, Handlers{
		OnStateChange: func(st State) { seen <- st },
	}, zerolog.Nop())

	s.setState(StateConnected)

	select {
	case st := <-seen:
		if st != StateConnected {
			t.Errorf("OnStateChange got %v, want StateConnected", st)
		}
	case <-time.After(time.Second):
		t.Fatal("OnStateChange handler never fired")
	}
	if s.State() != StateConnected {
		t.Errorf("State() = %v, want StateConnected", s.State())
	}
}

func TestState_String(t *testing.T) {
	cases := []struct {
		st   State
		want string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateAuthenticated, "authenticated"},
		{StateSubscribed, "subscribed"},
	}
	for _, tc := range cases {
		if got := tc.st.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.st, got, tc.want)
		}
	}
}
