// Package listener consumes Postgres LISTEN/NOTIFY change events and feeds
// them to the sync engine. It owns the reconnect loop: exponential backoff
// between attempts and a bounded retry budget, after which the service keeps
// running on its last synced state.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/telemetry"
)

// Connection lifecycle states.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateSubscribed   State = "subscribed"
	StateListening    State = "listening"
	StateStopped      State = "stopped"
)

const (
	DefaultMaxRetries    = 10
	DefaultBackoffFloor  = time.Second
	DefaultBackoffCeil   = time.Minute
	DefaultWaitInterval  = 30 * time.Second
	DefaultShutdownGrace = 5 * time.Second
)

// ErrRetriesExhausted is returned when the reconnect budget runs out.
var ErrRetriesExhausted = errors.New("listener retries exhausted")

// Handler receives decoded change notifications.
type Handler interface {
	ApplyCategoryChange(ctx context.Context, change domain.CategoryChange) error
	ApplyBrandModelChange(ctx context.Context, change domain.BrandModelChange) error
}

// Conn is the subset of *pq.Listener the loop needs. Abstracted so tests can
// drive the state machine without a database.
type Conn interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// ConnectFunc opens a notification connection.
type ConnectFunc func(ctx context.Context) (Conn, error)

// Config carries the listener's tunables.
type Config struct {
	Channels       []string
	MaxRetries     int
	BackoffFloor   time.Duration
	BackoffCeiling time.Duration
	WaitInterval   time.Duration
	ShutdownGrace  time.Duration
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if len(c.Channels) == 0 {
		c.Channels = []string{domain.ChannelCategoryChanges, domain.ChannelBrandModelChanges}
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffFloor <= 0 {
		c.BackoffFloor = DefaultBackoffFloor
	}
	if c.BackoffCeiling <= 0 {
		c.BackoffCeiling = DefaultBackoffCeil
	}
	if c.WaitInterval <= 0 {
		c.WaitInterval = DefaultWaitInterval
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = DefaultShutdownGrace
	}
}

// Listener runs the LISTEN/NOTIFY consumption loop.
type Listener struct {
	cfg       Config
	connect   ConnectFunc
	handler   Handler
	telemetry *telemetry.Provider
	logger    logger.Logger

	mu      sync.RWMutex
	state   State
	retries int

	dispatches sync.WaitGroup
}

// New creates a listener. connect is called for every (re)connection attempt.
func New(cfg Config, connect ConnectFunc, handler Handler, tel *telemetry.Provider, log logger.Logger) *Listener {
	cfg.SetDefaults()

	return &Listener{
		cfg:     cfg,
		connect: connect,
		handler: handler,

		telemetry: tel,
		logger:    log,
		state:     StateDisconnected,
	}
}

// State reports the current connection state.
func (l *Listener) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state
}

func (l *Listener) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Run blocks until ctx is cancelled or the retry budget is exhausted.
// A cancelled context is a clean shutdown and returns nil.
func (l *Listener) Run(ctx context.Context) error {
	backoff := NewBackoff(l.cfg.BackoffFloor, l.cfg.BackoffCeiling)

	for {
		if ctx.Err() != nil {
			return l.shutdown()
		}

		conn, err := l.establish(ctx)
		if err != nil {
			if !l.retryAfter(ctx, backoff, err) {
				l.setState(StateStopped)
				if ctx.Err() != nil {
					return l.shutdown()
				}
				return l.exhausted()
			}
			continue
		}

		backoff.Reset()
		l.resetRetries()
		l.setState(StateListening)
		l.logger.Info("listening for change notifications",
			logger.Strings("channels", l.cfg.Channels))

		err = l.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return l.shutdown()
		}

		l.setState(StateDisconnected)
		if !l.retryAfter(ctx, backoff, err) {
			l.setState(StateStopped)
			if ctx.Err() != nil {
				return l.shutdown()
			}
			return l.exhausted()
		}
	}
}

func (l *Listener) exhausted() error {
	l.mu.RLock()
	retries := l.retries
	l.mu.RUnlock()

	l.logger.Error("real-time category updates disabled, serving last synced state",
		logger.Int("retries", retries))

	return fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, retries)
}

// establish opens a connection and subscribes to every configured channel.
func (l *Listener) establish(ctx context.Context) (Conn, error) {
	l.setState(StateConnecting)
	if l.telemetry != nil {
		l.telemetry.Metrics.ListenerReconnects.Inc()
	}

	conn, err := l.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}

	l.setState(StateSubscribed)
	for _, channel := range l.cfg.Channels {
		if err := conn.Listen(channel); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("subscribing to %s: %w", channel, err)
		}
	}

	return conn, nil
}

// consume blocks on the notification channel with a bounded wait per cycle.
// Returns nil only when ctx is cancelled.
func (l *Listener) consume(ctx context.Context, conn Conn) error {
	notifications := conn.NotificationChannel()
	keepalive := time.NewTimer(l.cfg.WaitInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case n, ok := <-notifications:
			if !ok {
				return errors.New("notification channel closed")
			}
			if n == nil {
				// pq signals a reconnect with a nil notification; hand the
				// resubscribe back to our own loop.
				return errors.New("connection re-established by driver, resubscribing")
			}
			l.dispatch(n)

		case <-keepalive.C:
			if err := conn.Ping(); err != nil {
				return fmt.Errorf("keepalive ping: %w", err)
			}
		}

		if !keepalive.Stop() {
			select {
			case <-keepalive.C:
			default:
			}
		}
		keepalive.Reset(l.cfg.WaitInterval)
	}
}

// dispatch decodes and applies a notification off the blocking-wait path so a
// slow handler cannot stall delivery.
func (l *Listener) dispatch(n *pq.Notification) {
	l.dispatches.Add(1)

	go func() {
		defer l.dispatches.Done()
		l.apply(n.Channel, n.Extra)
	}()
}

func (l *Listener) apply(channel, payload string) {
	ctx := context.Background()

	var err error
	switch channel {
	case domain.ChannelCategoryChanges:
		var change domain.CategoryChange
		if err = json.Unmarshal([]byte(payload), &change); err == nil {
			err = l.handler.ApplyCategoryChange(ctx, change)
		}

	case domain.ChannelBrandModelChanges:
		var change domain.BrandModelChange
		if err = json.Unmarshal([]byte(payload), &change); err == nil {
			err = l.handler.ApplyBrandModelChange(ctx, change)
		}

	default:
		l.logger.Warn("notification on unknown channel dropped",
			logger.String("channel", channel))
		return
	}

	if l.telemetry != nil {
		l.telemetry.RecordNotification(ctx, channel, err == nil)
	}

	if err != nil {
		l.logger.Error("failed to apply change notification",
			logger.String("channel", channel),
			logger.String("payload", payload),
			logger.Error(err))
	}
}

// retryAfter sleeps for the next backoff interval. Returns false when the
// retry budget is exhausted or ctx is cancelled.
func (l *Listener) retryAfter(ctx context.Context, backoff *Backoff, cause error) bool {
	l.mu.Lock()
	l.retries++
	retries := l.retries
	l.mu.Unlock()

	if retries > l.cfg.MaxRetries {
		return false
	}

	delay := backoff.Next()
	l.logger.Warn("listener connection lost, retrying",
		logger.Int("attempt", retries),
		logger.Int("max_retries", l.cfg.MaxRetries),
		logger.Duration("backoff", delay),
		logger.Error(cause))

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (l *Listener) resetRetries() {
	l.mu.Lock()
	l.retries = 0
	l.mu.Unlock()
}

// shutdown gives in-flight dispatches a bounded grace period to finish.
func (l *Listener) shutdown() error {
	l.setState(StateStopped)

	done := make(chan struct{})
	go func() {
		l.dispatches.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(l.cfg.ShutdownGrace):
		l.logger.Warn("shutdown grace period expired with dispatches still in flight")
	}

	l.logger.Info("change listener stopped")
	return nil
}
