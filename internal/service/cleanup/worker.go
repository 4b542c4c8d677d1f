package cleanup

import (
	"context"
	"log"
	"time"
)

type SessionPurger interface {
	DeleteExpired(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Worker periodically deletes sessions whose refresh tokens have expired.
type Worker struct {
	Sessions SessionPurger
	MaxAge   time.Duration
	Interval time.Duration
}

func NewWorker(sessions SessionPurger, maxAge time.Duration) *Worker {
	return &Worker{Sessions: sessions, MaxAge: maxAge, Interval: time.Hour}
}

// Start runs one sweep immediately, then one per Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.runCleanup(ctx)

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.runCleanup(ctx)
			case <-ctx.Done():
				log.Println("[CLEANUP] Background worker stopped")
				return
			}
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

func (w *Worker) runCleanup(ctx context.Context) {
	deleted, err := w.Sessions.DeleteExpired(ctx, w.MaxAge)
	if err != nil {
		log.Printf("[CLEANUP] Error cleaning up sessions: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[CLEANUP] Removed %d expired sessions", deleted)
	}
}
