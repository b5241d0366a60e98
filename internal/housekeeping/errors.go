package housekeeping

import (
	"errors"
	"fmt"

	"github.com/runnerr0/housekeeper/internal/feed"
)

// Error kinds. A failed step wraps exactly one of these together with the
// underlying cause, so errors.Is matches both.
var (
	ErrCalendar     = errors.New("calendar computation failed")
	ErrStorageFetch = errors.New("storage fetch failed")
	ErrStorageSave  = errors.New("storage save failed")
	ErrBatchDelete  = errors.New("batch delete failed")
)

// Step names one committed unit of a housekeeping pass.
type Step string

const (
	StepExpireGroups    Step = "expire-groups"
	StepSweepArticles   Step = "sweep-articles"
	StepPruneTalkPages  Step = "prune-talk-pages"
	StepDemoteDiskCache Step = "demote-disk-cache"
)

// Error is returned when a housekeeping step fails. Steps committed before
// the failing one stay committed; the failing step's pending changes have
// been rolled back.
type Error struct {
	Step Step
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("housekeeping %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Anomaly is a malformed or unresolvable piece of a content group. It is
// reported and skipped; it never fails a pass.
type Anomaly struct {
	GroupKey    string
	ContentType feed.ContentType
	Reason      string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("group %s (%s): %s", a.GroupKey, a.ContentType, a.Reason)
}
