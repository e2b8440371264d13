package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/joshsymonds/batchmod/internal/gmail"
)

// Mailbox is the mutation surface the dispatcher consumes. Bulk operations
// take every record of a group in one call; thread-scoped operations take
// the group's deduplicated parent threads. Category reassignment has no
// bulk primitive and is issued per record.
type Mailbox[H comparable] interface {
	AddLabel(ctx context.Context, label gmail.LabelID, recs []H) error
	RemoveLabel(ctx context.Context, label gmail.LabelID, recs []H) error
	ReassignCategories(ctx context.Context, rec H, add, remove []gmail.Category) error
	MoveToInbox(ctx context.Context, threads []gmail.ThreadID) error
	MoveToArchive(ctx context.Context, threads []gmail.ThreadID) error
	MoveToTrash(ctx context.Context, threads []gmail.ThreadID) error
	MoveRecordToInbox(ctx context.Context, rec H) error
	MoveRecordToArchive(ctx context.Context, rec H) error
	MoveRecordToTrash(ctx context.Context, rec H) error
	MarkImportant(ctx context.Context, recs []H) error
	MarkUnimportant(ctx context.Context, recs []H) error
	MarkThreadsRead(ctx context.Context, threads []gmail.ThreadID) error
	MarkThreadsUnread(ctx context.Context, threads []gmail.ThreadID) error
	MarkRecordsRead(ctx context.Context, recs []H) error
	MarkRecordsUnread(ctx context.Context, recs []H) error
}

// Stats counts the calls a batch produced (or would produce, in dry-run).
type Stats struct {
	Records          int `json:"records"`
	LabelAddCalls    int `json:"label_add_calls"`
	LabelRemoveCalls int `json:"label_remove_calls"`
	CategoryCalls    int `json:"category_calls"`
	MoveCalls        int `json:"move_calls"`
	ImportanceCalls  int `json:"importance_calls"`
	ReadCalls        int `json:"read_calls"`
	BookkeepingCalls int `json:"bookkeeping_calls"`
}

// Calls returns the total number of mailbox calls.
func (s Stats) Calls() int {
	return s.LabelAddCalls + s.LabelRemoveCalls + s.CategoryCalls +
		s.MoveCalls + s.ImportanceCalls + s.ReadCalls + s.BookkeepingCalls
}

// Engine dispatches one aggregated batch against a mailbox. It holds no
// state across batches beyond the session's label cache.
type Engine[H comparable] struct {
	Mailbox Mailbox[H]
	Session *Session
	Log     *slog.Logger
	Kind    string // "thread" or "message", diagnostics only
	DryRun  bool
}

// NewEngine constructs an Engine with sane defaults.
func NewEngine[H comparable](mb Mailbox[H], session *Session, logger *slog.Logger, kind string) *Engine[H] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Engine[H]{Mailbox: mb, Session: session, Log: logger, Kind: kind}
}

// Apply aggregates the dataset and issues the grouped calls in fixed order:
// label adds, label removes, category reassignment, moves, importance, read
// state, then bookkeeping. The first failure aborts the batch; earlier
// steps are not rolled back, and bookkeeping never runs after a failure.
// An empty dataset issues no calls at all.
func (e *Engine[H]) Apply(ctx context.Context, ds Dataset[H]) (Stats, error) {
	st := Stats{Records: len(ds)}
	if len(ds) == 0 {
		e.Log.InfoContext(ctx, "empty dataset, nothing to apply", "kind", e.Kind)
		return st, nil
	}
	g := Aggregate(ds)
	if err := g.Validate(); err != nil {
		return st, err
	}
	if e.Log.Enabled(ctx, slog.LevelDebug) {
		for _, entry := range ds {
			e.Log.DebugContext(ctx, "queued record",
				"kind", e.Kind, "id", fmt.Sprint(entry.ID), "subject", entry.Subject)
		}
	}
	steps := []func(context.Context, Groups[H], *Stats) error{
		e.applyLabelAdds,
		e.applyLabelRemoves,
		e.applyCategories,
		e.applyMoves,
		e.applyImportance,
		e.applyRead,
	}
	for _, step := range steps {
		if err := step(ctx, g, &st); err != nil {
			return st, err
		}
	}
	if err := e.bookkeeping(ctx, ds, &st); err != nil {
		return st, err
	}
	e.Log.InfoContext(ctx, "batch applied",
		"kind", e.Kind, "records", st.Records, "calls", st.Calls(), "dry_run", e.DryRun)
	return st, nil
}

// skip reports whether a call should be suppressed (dry-run), logging what
// would have been issued.
func (e *Engine[H]) skip(ctx context.Context, call, key string, size int) bool {
	if !e.DryRun {
		return false
	}
	e.Log.InfoContext(ctx, "dry-run call skipped",
		"kind", e.Kind, "call", call, "key", key, "size", size)
	return true
}

func (e *Engine[H]) applyLabelAdds(ctx context.Context, g Groups[H], st *Stats) error {
	for _, name := range sortedKeys(g.AddByLabel) {
		recs := g.AddByLabel[name]
		st.LabelAddCalls++
		if e.skip(ctx, "add_label", name, len(recs)) {
			continue
		}
		id, err := e.Session.Label(ctx, name)
		if err != nil {
			return err
		}
		if err := e.Mailbox.AddLabel(ctx, id, recs); err != nil {
			return fmt.Errorf("add label %q: %w", name, err)
		}
	}
	return nil
}

// Removes run after adds: a label in both sets for the same record ends up
// removed. That tie-break is the contract, not an accident.
func (e *Engine[H]) applyLabelRemoves(ctx context.Context, g Groups[H], st *Stats) error {
	for _, name := range sortedKeys(g.RemoveByLabel) {
		recs := g.RemoveByLabel[name]
		st.LabelRemoveCalls++
		if e.skip(ctx, "remove_label", name, len(recs)) {
			continue
		}
		id, err := e.Session.Label(ctx, name)
		if err != nil {
			return err
		}
		if err := e.Mailbox.RemoveLabel(ctx, id, recs); err != nil {
			return fmt.Errorf("remove label %q: %w", name, err)
		}
	}
	return nil
}

// Category reassignment specifies the complete desired tab set per record:
// requested categories are added, every other category is removed. That
// keeps the tabs mutually exclusive, and rules out a bulk call.
func (e *Engine[H]) applyCategories(ctx context.Context, g Groups[H], st *Stats) error {
	for _, entry := range g.Categorized {
		add := entry.Action.Categories
		remove := gmail.Complement(add)
		st.CategoryCalls++
		if e.skip(ctx, "reassign_categories", fmt.Sprint(add), 1) {
			continue
		}
		if err := e.Mailbox.ReassignCategories(ctx, entry.ID, add, remove); err != nil {
			return fmt.Errorf("reassign categories for %v: %w", entry.ID, err)
		}
	}
	return nil
}

func (e *Engine[H]) applyMoves(ctx context.Context, g Groups[H], st *Stats) error {
	bulk := map[MoveState]func(context.Context, []gmail.ThreadID) error{
		MoveInbox:   e.Mailbox.MoveToInbox,
		MoveArchive: e.Mailbox.MoveToArchive,
		MoveTrash:   e.Mailbox.MoveToTrash,
	}
	perRecord := map[MoveState]func(context.Context, H) error{
		MoveRecordInbox:   e.Mailbox.MoveRecordToInbox,
		MoveRecordArchive: e.Mailbox.MoveRecordToArchive,
		MoveRecordTrash:   e.Mailbox.MoveRecordToTrash,
	}
	for m := MoveInbox; m <= MoveRecordTrash; m++ {
		entries := g.ByMove[m]
		if len(entries) == 0 {
			continue
		}
		if fn, ok := bulk[m]; ok {
			threads := threadIDs(entries)
			st.MoveCalls++
			if e.skip(ctx, "move", m.String(), len(threads)) {
				continue
			}
			if err := fn(ctx, threads); err != nil {
				return fmt.Errorf("move %s: %w", m, err)
			}
			continue
		}
		// No bulk primitive at record granularity: one call per record.
		fn := perRecord[m]
		for _, entry := range entries {
			st.MoveCalls++
			if e.skip(ctx, "move_record", m.String(), 1) {
				continue
			}
			if err := fn(ctx, entry.ID); err != nil {
				return fmt.Errorf("move %s %v: %w", m, entry.ID, err)
			}
		}
	}
	return nil
}

func (e *Engine[H]) applyImportance(ctx context.Context, g Groups[H], st *Stats) error {
	calls := map[Importance]func(context.Context, []H) error{
		Important:   e.Mailbox.MarkImportant,
		Unimportant: e.Mailbox.MarkUnimportant,
	}
	for i := Important; i <= Unimportant; i++ {
		recs := g.ByImportance[i]
		if len(recs) == 0 {
			continue
		}
		st.ImportanceCalls++
		if e.skip(ctx, "importance", i.String(), len(recs)) {
			continue
		}
		if err := calls[i](ctx, recs); err != nil {
			return fmt.Errorf("mark %s: %w", i, err)
		}
	}
	return nil
}

func (e *Engine[H]) applyRead(ctx context.Context, g Groups[H], st *Stats) error {
	threadCalls := map[ReadState]func(context.Context, []gmail.ThreadID) error{
		ThreadRead:   e.Mailbox.MarkThreadsRead,
		ThreadUnread: e.Mailbox.MarkThreadsUnread,
	}
	recordCalls := map[ReadState]func(context.Context, []H) error{
		RecordRead:   e.Mailbox.MarkRecordsRead,
		RecordUnread: e.Mailbox.MarkRecordsUnread,
	}
	for r := ThreadRead; r <= RecordUnread; r++ {
		entries := g.ByRead[r]
		if len(entries) == 0 {
			continue
		}
		st.ReadCalls++
		if fn, ok := threadCalls[r]; ok {
			threads := threadIDs(entries)
			if e.skip(ctx, "read", r.String(), len(threads)) {
				continue
			}
			if err := fn(ctx, threads); err != nil {
				return fmt.Errorf("mark %s: %w", r, err)
			}
			continue
		}
		if e.skip(ctx, "read", r.String(), len(entries)) {
			continue
		}
		if err := recordCalls[r](ctx, handles(entries)); err != nil {
			return fmt.Errorf("mark %s: %w", r, err)
		}
	}
	return nil
}

// bookkeeping runs last, over the whole dataset, so a failure in any earlier
// step leaves every record unmarked for the next run.
func (e *Engine[H]) bookkeeping(ctx context.Context, ds Dataset[H], st *Stats) error {
	recs := handles(ds)
	if e.Session.ProcessedLabel != "" {
		st.BookkeepingCalls++
		if !e.skip(ctx, "bookkeeping_add", e.Session.ProcessedLabel, len(recs)) {
			id, err := e.Session.Label(ctx, e.Session.ProcessedLabel)
			if err != nil {
				return err
			}
			if err := e.Mailbox.AddLabel(ctx, id, recs); err != nil {
				return fmt.Errorf("mark processed: %w", err)
			}
		}
	}
	if e.Session.UnprocessedLabel != "" {
		st.BookkeepingCalls++
		if !e.skip(ctx, "bookkeeping_remove", e.Session.UnprocessedLabel, len(recs)) {
			id, err := e.Session.Label(ctx, e.Session.UnprocessedLabel)
			if err != nil {
				return err
			}
			if err := e.Mailbox.RemoveLabel(ctx, id, recs); err != nil {
				return fmt.Errorf("clear unprocessed: %w", err)
			}
		}
	}
	return nil
}

// PlanStats counts the calls a dataset would produce, without touching a
// mailbox. session may be nil when bookkeeping is not of interest.
func PlanStats[H comparable](ds Dataset[H], session *Session) (Stats, error) {
	st := Stats{Records: len(ds)}
	if len(ds) == 0 {
		return st, nil
	}
	g := Aggregate(ds)
	if err := g.Validate(); err != nil {
		return st, err
	}
	st.LabelAddCalls = len(g.AddByLabel)
	st.LabelRemoveCalls = len(g.RemoveByLabel)
	st.CategoryCalls = len(g.Categorized)
	for m := MoveInbox; m <= MoveTrash; m++ {
		if len(g.ByMove[m]) > 0 {
			st.MoveCalls++
		}
	}
	for m := MoveRecordInbox; m <= MoveRecordTrash; m++ {
		st.MoveCalls += len(g.ByMove[m])
	}
	for i := Important; i <= Unimportant; i++ {
		if len(g.ByImportance[i]) > 0 {
			st.ImportanceCalls++
		}
	}
	for r := ThreadRead; r <= RecordUnread; r++ {
		if len(g.ByRead[r]) > 0 {
			st.ReadCalls++
		}
	}
	if session != nil {
		if session.ProcessedLabel != "" {
			st.BookkeepingCalls++
		}
		if session.UnprocessedLabel != "" {
			st.BookkeepingCalls++
		}
	}
	return st, nil
}

func sortedKeys[H comparable](m map[string][]H) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
