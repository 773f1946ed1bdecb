package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/logging"
)

// ExpiredDeleter removes tokens past their expiry.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically deletes expired magic links that were never opened.
// Redeem already removes expired rows it touches; this catches the rest.
type Sweeper struct {
	store    ExpiredDeleter
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewSweeper(store ExpiredDeleter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logging.For("token.sweeper"),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.store.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep expired tokens failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired tokens swept", "deleted", n)
	}
}
