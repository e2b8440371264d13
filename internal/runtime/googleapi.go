// internal/runtime/googleapi.go — adapts *gmail.Service to the engine's
// mailbox interfaces, at thread and at message granularity.
package runtime

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/joshsymonds/batchmod/internal/engine"
	gc "github.com/joshsymonds/batchmod/internal/gmail"
	"github.com/joshsymonds/batchmod/internal/rate"
)

// batchModifyChunk is the Gmail API cap on ids per messages.batchModify.
const batchModifyChunk = 1000

// core holds what both granularities share: the service handle, the rate
// limiter gate, and the thread-scoped calls (the API has no bulk thread
// primitive, so those loop one request per thread).
type core struct {
	svc     *gmailapi.Service
	limiter rate.Limiter
}

func (c *core) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

func (c *core) modifyThreads(ctx context.Context, threads []gc.ThreadID, add, remove []string) error {
	for _, id := range threads {
		if err := c.wait(ctx); err != nil {
			return err
		}
		req := &gmailapi.ModifyThreadRequest{AddLabelIds: add, RemoveLabelIds: remove}
		if _, err := c.svc.Users.Threads.Modify("me", string(id), req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("modify thread %s: %w", id, err)
		}
	}
	return nil
}

func (c *core) trashThreads(ctx context.Context, threads []gc.ThreadID) error {
	for _, id := range threads {
		if err := c.wait(ctx); err != nil {
			return err
		}
		if _, err := c.svc.Users.Threads.Trash("me", string(id)).Context(ctx).Do(); err != nil {
			return fmt.Errorf("trash thread %s: %w", id, err)
		}
	}
	return nil
}

func categoryLabels(cats []gc.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, string(c.SystemLabel()))
	}
	return out
}

// threadMailbox applies mutations at thread granularity; records and
// threads are the same handles here.
type threadMailbox struct{ core }

// NewThreadMailbox wraps a Gmail service for thread-granularity dispatch.
func NewThreadMailbox(svc *gmailapi.Service, limiter rate.Limiter) engine.Mailbox[gc.ThreadID] {
	return &threadMailbox{core{svc: svc, limiter: limiter}}
}

func (m *threadMailbox) AddLabel(ctx context.Context, label gc.LabelID, recs []gc.ThreadID) error {
	return m.modifyThreads(ctx, recs, []string{string(label)}, nil)
}

func (m *threadMailbox) RemoveLabel(ctx context.Context, label gc.LabelID, recs []gc.ThreadID) error {
	return m.modifyThreads(ctx, recs, nil, []string{string(label)})
}

func (m *threadMailbox) ReassignCategories(ctx context.Context, rec gc.ThreadID, add, remove []gc.Category) error {
	return m.modifyThreads(ctx, []gc.ThreadID{rec}, categoryLabels(add), categoryLabels(remove))
}

func (m *threadMailbox) MoveToInbox(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, []string{string(gc.LabelInbox)}, nil)
}

func (m *threadMailbox) MoveToArchive(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, nil, []string{string(gc.LabelInbox)})
}

func (m *threadMailbox) MoveToTrash(ctx context.Context, threads []gc.ThreadID) error {
	return m.trashThreads(ctx, threads)
}

func (m *threadMailbox) MoveRecordToInbox(ctx context.Context, rec gc.ThreadID) error {
	return m.MoveToInbox(ctx, []gc.ThreadID{rec})
}

func (m *threadMailbox) MoveRecordToArchive(ctx context.Context, rec gc.ThreadID) error {
	return m.MoveToArchive(ctx, []gc.ThreadID{rec})
}

func (m *threadMailbox) MoveRecordToTrash(ctx context.Context, rec gc.ThreadID) error {
	return m.trashThreads(ctx, []gc.ThreadID{rec})
}

func (m *threadMailbox) MarkImportant(ctx context.Context, recs []gc.ThreadID) error {
	return m.modifyThreads(ctx, recs, []string{string(gc.LabelImportant)}, nil)
}

func (m *threadMailbox) MarkUnimportant(ctx context.Context, recs []gc.ThreadID) error {
	return m.modifyThreads(ctx, recs, nil, []string{string(gc.LabelImportant)})
}

func (m *threadMailbox) MarkThreadsRead(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, nil, []string{string(gc.LabelUnread)})
}

func (m *threadMailbox) MarkThreadsUnread(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, []string{string(gc.LabelUnread)}, nil)
}

func (m *threadMailbox) MarkRecordsRead(ctx context.Context, recs []gc.ThreadID) error {
	return m.MarkThreadsRead(ctx, recs)
}

func (m *threadMailbox) MarkRecordsUnread(ctx context.Context, recs []gc.ThreadID) error {
	return m.MarkThreadsUnread(ctx, recs)
}

// messageMailbox applies mutations at message granularity. Bulk label ops
// ride messages.batchModify; thread-scoped calls reuse the core loops.
type messageMailbox struct{ core }

// NewMessageMailbox wraps a Gmail service for message-granularity dispatch.
func NewMessageMailbox(svc *gmailapi.Service, limiter rate.Limiter) engine.Mailbox[gc.MessageID] {
	return &messageMailbox{core{svc: svc, limiter: limiter}}
}

func (m *messageMailbox) batchModify(ctx context.Context, recs []gc.MessageID, add, remove []string) error {
	for i := 0; i < len(recs); i += batchModifyChunk {
		j := min(i+batchModifyChunk, len(recs))
		if err := m.wait(ctx); err != nil {
			return err
		}
		req := &gmailapi.BatchModifyMessagesRequest{
			Ids:            messageStrings(recs[i:j]),
			AddLabelIds:    add,
			RemoveLabelIds: remove,
		}
		if err := m.svc.Users.Messages.BatchModify("me", req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("batch modify %d messages: %w", j-i, err)
		}
	}
	return nil
}

func (m *messageMailbox) modifyMessage(ctx context.Context, rec gc.MessageID, add, remove []string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	req := &gmailapi.ModifyMessageRequest{AddLabelIds: add, RemoveLabelIds: remove}
	if _, err := m.svc.Users.Messages.Modify("me", string(rec), req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("modify message %s: %w", rec, err)
	}
	return nil
}

func (m *messageMailbox) AddLabel(ctx context.Context, label gc.LabelID, recs []gc.MessageID) error {
	return m.batchModify(ctx, recs, []string{string(label)}, nil)
}

func (m *messageMailbox) RemoveLabel(ctx context.Context, label gc.LabelID, recs []gc.MessageID) error {
	return m.batchModify(ctx, recs, nil, []string{string(label)})
}

func (m *messageMailbox) ReassignCategories(ctx context.Context, rec gc.MessageID, add, remove []gc.Category) error {
	return m.modifyMessage(ctx, rec, categoryLabels(add), categoryLabels(remove))
}

func (m *messageMailbox) MoveToInbox(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, []string{string(gc.LabelInbox)}, nil)
}

func (m *messageMailbox) MoveToArchive(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, nil, []string{string(gc.LabelInbox)})
}

func (m *messageMailbox) MoveToTrash(ctx context.Context, threads []gc.ThreadID) error {
	return m.trashThreads(ctx, threads)
}

func (m *messageMailbox) MoveRecordToInbox(ctx context.Context, rec gc.MessageID) error {
	return m.modifyMessage(ctx, rec, []string{string(gc.LabelInbox)}, nil)
}

func (m *messageMailbox) MoveRecordToArchive(ctx context.Context, rec gc.MessageID) error {
	return m.modifyMessage(ctx, rec, nil, []string{string(gc.LabelInbox)})
}

func (m *messageMailbox) MoveRecordToTrash(ctx context.Context, rec gc.MessageID) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	if _, err := m.svc.Users.Messages.Trash("me", string(rec)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("trash message %s: %w", rec, err)
	}
	return nil
}

func (m *messageMailbox) MarkImportant(ctx context.Context, recs []gc.MessageID) error {
	return m.batchModify(ctx, recs, []string{string(gc.LabelImportant)}, nil)
}

func (m *messageMailbox) MarkUnimportant(ctx context.Context, recs []gc.MessageID) error {
	return m.batchModify(ctx, recs, nil, []string{string(gc.LabelImportant)})
}

func (m *messageMailbox) MarkThreadsRead(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, nil, []string{string(gc.LabelUnread)})
}

func (m *messageMailbox) MarkThreadsUnread(ctx context.Context, threads []gc.ThreadID) error {
	return m.modifyThreads(ctx, threads, []string{string(gc.LabelUnread)}, nil)
}

func (m *messageMailbox) MarkRecordsRead(ctx context.Context, recs []gc.MessageID) error {
	return m.batchModify(ctx, recs, nil, []string{string(gc.LabelUnread)})
}

func (m *messageMailbox) MarkRecordsUnread(ctx context.Context, recs []gc.MessageID) error {
	return m.batchModify(ctx, recs, []string{string(gc.LabelUnread)}, nil)
}

func messageStrings(ids []gc.MessageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// labelClient implements the session's label-resolution collaborator.
type labelClient struct{ core }

// NewLabelClient wraps a Gmail service for label lookup and creation.
func NewLabelClient(svc *gmailapi.Service, limiter rate.Limiter) gc.LabelClient {
	return &labelClient{core{svc: svc, limiter: limiter}}
}

func (l *labelClient) ListLabels(ctx context.Context) (map[string]gc.LabelID, map[gc.LabelID]string, error) {
	if err := l.wait(ctx); err != nil {
		return nil, nil, err
	}
	lr, err := l.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("list labels: %w", err)
	}
	byName := map[string]gc.LabelID{}
	byID := map[gc.LabelID]string{}
	for _, lbl := range lr.Labels {
		byName[lbl.Name] = gc.LabelID(lbl.Id)
		byID[gc.LabelID(lbl.Id)] = lbl.Name
	}
	return byName, byID, nil
}

func (l *labelClient) EnsureLabel(ctx context.Context, name string) (gc.LabelID, error) {
	byName, _, err := l.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	if id, ok := byName[name]; ok {
		return id, nil
	}
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	created, err := l.svc.Users.Labels.Create("me", &gmailapi.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}
	return gc.LabelID(created.Id), nil
}
