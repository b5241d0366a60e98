package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pass labels for PassDuration.
const (
	PassRun    = "run"
	PassDemote = "demote"
)

// HousekeepingMetrics holds metrics for housekeeping passes. All Record
// methods are safe to call on a nil receiver.
type HousekeepingMetrics struct {
	// GroupsExpired counts content groups deleted for age.
	GroupsExpired prometheus.Counter

	// ArticlesDeleted counts unreferenced articles removed by the sweep.
	ArticlesDeleted prometheus.Counter

	// ArticlesDemoted counts articles whose disk payload flag was cleared.
	ArticlesDemoted prometheus.Counter

	// TalkPagesPruned counts talk pages removed by the retention window.
	TalkPagesPruned prometheus.Counter

	// TopicContentReclaimed counts orphaned topic bodies removed.
	TopicContentReclaimed prometheus.Counter

	// Anomalies counts malformed content group entries skipped.
	Anomalies prometheus.Counter

	// Failures counts failed steps, labeled by step.
	Failures *prometheus.CounterVec

	// PassDuration tracks wall time of a whole pass, labeled by pass.
	PassDuration *prometheus.HistogramVec
}

// NewHousekeepingMetricsWithRegistry creates housekeeping metrics registered
// with reg. Each command builds its own registry so a textfile dump only
// carries housekeeping series.
func NewHousekeepingMetricsWithRegistry(reg prometheus.Registerer) *HousekeepingMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "housekeeper",
			Subsystem: "housekeeping",
			Name:      name,
			Help:      help,
		})
	}

	m := &HousekeepingMetrics{
		GroupsExpired:         counter("groups_expired_total", "Total content groups deleted for exceeding the maximum feed age."),
		ArticlesDeleted:       counter("articles_deleted_total", "Total unreferenced articles deleted."),
		ArticlesDemoted:       counter("articles_demoted_total", "Total articles demoted from the disk cache."),
		TalkPagesPruned:       counter("talk_pages_pruned_total", "Total talk pages deleted by the retention window."),
		TopicContentReclaimed: counter("topic_content_reclaimed_total", "Total orphaned talk page topic bodies deleted."),
		Anomalies:             counter("anomalies_total", "Total malformed content group entries skipped."),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "housekeeper",
				Subsystem: "housekeeping",
				Name:      "failures_total",
				Help:      "Total failed housekeeping steps.",
			},
			[]string{"step"},
		),
		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "housekeeper",
				Subsystem: "housekeeping",
				Name:      "pass_duration_seconds",
				Help:      "Duration of housekeeping passes in seconds.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"pass"},
		),
	}

	reg.MustRegister(
		m.GroupsExpired,
		m.ArticlesDeleted,
		m.ArticlesDemoted,
		m.TalkPagesPruned,
		m.TopicContentReclaimed,
		m.Anomalies,
		m.Failures,
		m.PassDuration,
	)

	return m
}

// RecordGroupsExpired adds n expired content groups.
func (m *HousekeepingMetrics) RecordGroupsExpired(n int) {
	if m == nil {
		return
	}
	m.GroupsExpired.Add(float64(n))
}

// RecordArticlesDeleted adds n swept articles.
func (m *HousekeepingMetrics) RecordArticlesDeleted(n int) {
	if m == nil {
		return
	}
	m.ArticlesDeleted.Add(float64(n))
}

// RecordArticlesDemoted adds n demoted articles.
func (m *HousekeepingMetrics) RecordArticlesDemoted(n int) {
	if m == nil {
		return
	}
	m.ArticlesDemoted.Add(float64(n))
}

// RecordTalkPagesPruned adds n pruned talk pages.
func (m *HousekeepingMetrics) RecordTalkPagesPruned(n int) {
	if m == nil {
		return
	}
	m.TalkPagesPruned.Add(float64(n))
}

// RecordTopicContentReclaimed adds n reclaimed topic bodies.
func (m *HousekeepingMetrics) RecordTopicContentReclaimed(n int64) {
	if m == nil {
		return
	}
	m.TopicContentReclaimed.Add(float64(n))
}

// RecordAnomaly counts one skipped entry.
func (m *HousekeepingMetrics) RecordAnomaly() {
	if m == nil {
		return
	}
	m.Anomalies.Inc()
}

// RecordFailure counts one failed step.
func (m *HousekeepingMetrics) RecordFailure(step string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(step).Inc()
}

// RecordPassDuration observes the duration of one pass.
func (m *HousekeepingMetrics) RecordPassDuration(pass string, d time.Duration) {
	if m == nil {
		return
	}
	m.PassDuration.WithLabelValues(pass).Observe(d.Seconds())
}
