package listener

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/suqly/category-suggester/internal/logger"
)

// Reconnect bounds for the underlying pq.Listener. Our own loop manages the
// real backoff; these only pace the driver's internal redial.
const (
	pqMinReconnect = 10 * time.Second
	pqMaxReconnect = time.Minute
)

// PQConnect returns a ConnectFunc backed by lib/pq's LISTEN/NOTIFY support.
func PQConnect(dsn string, log logger.Logger) ConnectFunc {
	return func(_ context.Context) (Conn, error) {
		l := pq.NewListener(dsn, pqMinReconnect, pqMaxReconnect, func(event pq.ListenerEventType, err error) {
			if err != nil {
				log.Warn("pq listener event", logger.Int("event", int(event)), logger.Error(err))
			}
		})

		// NewListener dials asynchronously; Ping forces the first connection
		// so a bad DSN fails here instead of inside the wait loop.
		if err := l.Ping(); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("opening notification connection: %w", err)
		}

		return l, nil
	}
}
