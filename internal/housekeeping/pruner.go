package housekeeping

import (
	"context"
	"fmt"
)

// PruneResult reports what PruneTalkPages removed.
type PruneResult struct {
	TalkPagesDeleted    int
	TopicContentRemoved int64
}

// PruneTalkPages keeps the most recently accessed talk pages up to the
// configured limit and batch deletes the rest by id. Topic content left
// without a topic is reclaimed only after the batch delete has committed.
func (h *Housekeeper) PruneTalkPages(ctx context.Context, sess Session) (PruneResult, error) {
	var res PruneResult

	ids, err := sess.BatchDeleteTalkPages(ctx, h.talkPageLimit)
	if err != nil {
		return res, h.fail(sess, StepPruneTalkPages, fmt.Errorf("%w: talk pages: %w", ErrBatchDelete, err))
	}
	res.TalkPagesDeleted = len(ids)
	h.metrics.RecordTalkPagesPruned(len(ids))

	removed, err := sess.RemoveUnlinkedTopicContent(ctx)
	if err != nil {
		return res, h.fail(sess, StepPruneTalkPages, fmt.Errorf("%w: unlinked topic content: %w", ErrStorageSave, err))
	}
	res.TopicContentRemoved = removed
	h.metrics.RecordTopicContentReclaimed(removed)

	h.logger.Info("talk pages pruned",
		"deleted", res.TalkPagesDeleted, "topic_content_removed", removed, "limit", h.talkPageLimit)

	return res, nil
}
