package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Janitor evicts idle sessions on a fixed schedule
type Janitor struct {
	cron  *cron.Cron
	store *Store
	ttl   time.Duration
	log   *logrus.Logger
}

// NewJanitor creates a janitor that prunes sessions idle longer than ttl,
// checking every interval
func NewJanitor(store *Store, ttl, interval time.Duration, log *logrus.Logger) (*Janitor, error) {
	j := &Janitor{
		cron:  cron.New(),
		store: store,
		ttl:   ttl,
		log:   log,
	}

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule session janitor: %w", err)
	}

	return j, nil
}

// Start begins the eviction schedule in the background
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule; a sweep already in flight finishes
func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) sweep() {
	if pruned := j.store.PruneIdle(j.ttl); pruned > 0 {
		j.log.WithFields(logrus.Fields{
			"pruned":    pruned,
			"remaining": j.store.Count(),
		}).Info("evicted idle sessions")
	}
}
