package monitoring

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/isdelr/socialfeed-be/internal/services"
	"github.com/isdelr/socialfeed-be/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// sweepGrace is how old a blob directory must be before it is eligible for
// removal. Post creation writes blobs while its transaction is still open,
// so a fresh directory without a post row may belong to an in-flight create.
const sweepGrace = 15 * time.Minute

// Sweeper removes media blob directories whose post no longer exists. A
// crash between a rolled-back creation and its blob cleanup can leave such
// residue behind; the sweeper reclaims it on a cron schedule.
type Sweeper struct {
	db       *sql.DB
	store    *storage.Store
	eventSvc services.EventServiceProvider
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
}

// NewSweeper creates a sweeper from a standard cron expression.
func NewSweeper(db *sql.DB, store *storage.Store, eventSvc services.EventServiceProvider, cronExpr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cronExpr, err)
	}
	return &Sweeper{
		db:       db,
		store:    store,
		eventSvc: eventSvc,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting background media sweeper...")
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	// Run once immediately on start
	s.Sweep()
	next := s.schedule.Next(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping background media sweeper.")
			return
		case <-s.ticker.C:
			now := time.Now()
			if now.After(next) {
				s.Sweep()
				next = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

// Sweep scans the blob store and removes directories for unknown post ids.
// Directories younger than the grace period are left alone, so blobs of a
// creation whose transaction has not committed yet are never touched.
// Returns how many directories were removed.
func (s *Sweeper) Sweep() int {
	ids, err := s.store.ListPostDirs()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to list media directories")
		return 0
	}

	removed := 0
	for _, id := range ids {
		info, err := os.Stat(filepath.Join(s.store.Root(), "posts", id))
		if err != nil {
			log.Error().Err(err).Str("post_id", id).Msg("Sweeper: directory stat failed")
			continue
		}
		if time.Since(info.ModTime()) < sweepGrace {
			continue
		}

		var exists int
		err = s.db.QueryRow("SELECT COUNT(1) FROM posts WHERE id = ?", id).Scan(&exists)
		if err != nil {
			log.Error().Err(err).Str("post_id", id).Msg("Sweeper: post lookup failed")
			continue
		}
		if exists > 0 {
			continue
		}
		if err := s.store.RemovePost(id); err != nil {
			log.Error().Err(err).Str("post_id", id).Msg("Sweeper: failed to remove orphan directory")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Sweeper: removed orphan media directories")
		msg := fmt.Sprintf("Removed %d orphan media directorie(s)", removed)
		if err := s.eventSvc.CreateEvent("sweeper.clean", "info", msg); err != nil {
			log.Warn().Err(err).Msg("Sweeper: failed to record event")
		}
	}
	return removed
}
