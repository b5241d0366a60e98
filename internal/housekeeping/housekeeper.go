// Package housekeeping reclaims cache space. A pass expires old feed groups,
// computes which articles are still reachable from the feed or the
// navigation state, deletes the cached articles nothing reaches and no user
// state protects, and trims talk pages to a fixed retention window. Disk
// demotion runs separately on its own schedule.
//
// Every step commits before the next one starts, so an interrupted pass
// leaves a consistent, merely incomplete cache and can simply be rerun.
package housekeeping

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/runnerr0/housekeeper/internal/calendar"
	"github.com/runnerr0/housekeeper/internal/metrics"
)

const (
	DefaultMaxFeedAgeDays = 30
	DefaultTalkPageLimit  = 50
)

// Options configures a Housekeeper. Zero fields take defaults.
type Options struct {
	MaxFeedAgeDays int
	TalkPageLimit  int
	Clock          calendar.Clock
	Logger         *log.Logger
	Metrics        *metrics.HousekeepingMetrics
}

// Housekeeper runs housekeeping passes. It holds no per-pass state; the
// session passed to each call is owned by the caller for the duration of the
// call and must not be shared with another writer.
type Housekeeper struct {
	maxFeedAgeDays int
	talkPageLimit  int
	clock          calendar.Clock
	logger         *log.Logger
	metrics        *metrics.HousekeepingMetrics
}

// New creates a Housekeeper.
func New(opts Options) *Housekeeper {
	h := &Housekeeper{
		maxFeedAgeDays: opts.MaxFeedAgeDays,
		talkPageLimit:  opts.TalkPageLimit,
		clock:          opts.Clock,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
	if h.maxFeedAgeDays <= 0 {
		h.maxFeedAgeDays = DefaultMaxFeedAgeDays
	}
	if h.talkPageLimit <= 0 {
		h.talkPageLimit = DefaultTalkPageLimit
	}
	if h.clock == nil {
		h.clock = calendar.SystemClock{}
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	return h
}

// Run performs one full pass and returns the URLs of the articles it
// deleted, in key order. The caller removes their files.
//
// If a step fails, Run returns an *Error. Steps before it stay committed, and
// the URLs already deleted by a committed sweep are still returned so their
// files can be reconciled.
func (h *Housekeeper) Run(ctx context.Context, sess Session, provider PreservedKeyProvider) ([]string, error) {
	hk := h.forPass(metrics.PassRun)
	start := time.Now()
	defer func() { hk.metrics.RecordPassDuration(metrics.PassRun, time.Since(start)) }()

	hk.logger.Info("housekeeping pass started")

	referenced, err := hk.ExpireGroups(ctx, sess)
	if err != nil {
		return nil, err
	}

	preserved, _, err := hk.preservedKeys(ctx, provider)
	if err != nil {
		return nil, hk.fail(sess, StepSweepArticles, err)
	}

	urls, err := hk.SweepArticles(ctx, sess, Reachable(referenced, preserved))
	if err != nil {
		return nil, err
	}

	if _, err := hk.PruneTalkPages(ctx, sess); err != nil {
		return urls, err
	}

	hk.logger.Info("housekeeping pass finished", "evicted", len(urls), "took", time.Since(start).Round(time.Millisecond))
	return urls, nil
}

// ExpireGroups deletes content groups older than the retention horizon and
// commits, returning the keys the remaining groups reference.
func (h *Housekeeper) ExpireGroups(ctx context.Context, sess Session) (KeySet, error) {
	cutoff, err := calendar.MidnightUTC(h.clock.Now(), -h.maxFeedAgeDays)
	if err != nil {
		return nil, h.fail(sess, StepExpireGroups, fmt.Errorf("%w: oldest retained day: %w", ErrCalendar, err))
	}

	groups, err := sess.ContentGroups(ctx)
	if err != nil {
		return nil, h.fail(sess, StepExpireGroups, fmt.Errorf("%w: content groups: %w", ErrStorageFetch, err))
	}

	c := CollectReferences(groups, cutoff)

	for _, a := range c.Anomalies {
		h.logger.Warn("skipping malformed content",
			"group", a.GroupKey, "content_type", a.ContentType, "reason", a.Reason)
		h.metrics.RecordAnomaly()
	}

	for _, g := range c.Expired {
		h.logger.Debug("expiring content group", "group", g.Key, "day", g.MidnightUTCDate.Format(time.DateOnly))
		sess.DeleteContentGroup(g)
	}

	if err := h.save(ctx, sess); err != nil {
		return nil, h.fail(sess, StepExpireGroups, err)
	}

	h.metrics.RecordGroupsExpired(len(c.Expired))
	h.logger.Info("content groups expired",
		"expired", len(c.Expired),
		"retained", len(groups)-len(c.Expired),
		"referenced", c.Referenced.Len(),
		"cutoff", cutoff.Format(time.DateOnly))

	return c.Referenced, nil
}

// forPass returns a copy of h whose logger is tagged with a fresh run ID.
func (h *Housekeeper) forPass(pass string) *Housekeeper {
	hk := *h
	hk.logger = h.logger.With("run", uuid.NewString(), "pass", pass)
	return &hk
}

func (h *Housekeeper) preservedKeys(ctx context.Context, provider PreservedKeyProvider) (KeySet, bool, error) {
	if provider == nil {
		return KeySet{}, false, nil
	}
	keys, ok, err := provider.PreservedKeys(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: preserved keys: %w", ErrStorageFetch, err)
	}
	if !ok {
		h.logger.Debug("no navigation state available")
		return KeySet{}, false, nil
	}
	return NewKeySet(keys...), true, nil
}

// save commits pending changes, skipping the write when there are none.
func (h *Housekeeper) save(ctx context.Context, sess Session) error {
	if !sess.HasChanges() {
		return nil
	}
	if err := sess.Save(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageSave, err)
	}
	return nil
}

// fail discards the step's pending changes and reports err as a step failure.
func (h *Housekeeper) fail(sess Session, step Step, err error) error {
	sess.Rollback()
	h.metrics.RecordFailure(string(step))
	h.logger.Error("housekeeping step failed", "step", step, "err", err)
	return &Error{Step: step, Err: err}
}
