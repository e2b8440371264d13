// Package engine groups per-record mutation decisions into the minimum set
// of mailbox calls and dispatches them in a fixed order. The same engine is
// instantiated at thread and at message granularity; only the handle type
// and the mailbox bindings differ.
package engine

import (
	"fmt"

	"github.com/joshsymonds/batchmod/internal/gmail"
)

// MoveState selects the destination a record should move to. The Record*
// variants act on a single message rather than its whole thread.
type MoveState int

const (
	MoveUnset MoveState = iota
	MoveInbox
	MoveArchive
	MoveTrash
	MoveRecordInbox
	MoveRecordArchive
	MoveRecordTrash
)

var moveNames = map[MoveState]string{
	MoveUnset:         "",
	MoveInbox:         "inbox",
	MoveArchive:       "archive",
	MoveTrash:         "trash",
	MoveRecordInbox:   "record_inbox",
	MoveRecordArchive: "record_archive",
	MoveRecordTrash:   "record_trash",
}

func (m MoveState) String() string { return moveNames[m] }

// ParseMoveState maps a decisions-file name to a MoveState. The empty
// string is the unset value.
func ParseMoveState(s string) (MoveState, error) {
	for state, name := range moveNames {
		if name == s {
			return state, nil
		}
	}
	return MoveUnset, fmt.Errorf("unknown move state %q", s)
}

// Importance flags a record important or not important.
type Importance int

const (
	ImportanceUnset Importance = iota
	Important
	Unimportant
)

var importanceNames = map[Importance]string{
	ImportanceUnset: "",
	Important:       "important",
	Unimportant:     "unimportant",
}

func (i Importance) String() string { return importanceNames[i] }

func ParseImportance(s string) (Importance, error) {
	for state, name := range importanceNames {
		if name == s {
			return state, nil
		}
	}
	return ImportanceUnset, fmt.Errorf("unknown importance %q", s)
}

// ReadState flips the read flag at thread or record scope.
type ReadState int

const (
	ReadUnset ReadState = iota
	ThreadRead
	ThreadUnread
	RecordRead
	RecordUnread
)

var readNames = map[ReadState]string{
	ReadUnset:    "",
	ThreadRead:   "thread_read",
	ThreadUnread: "thread_unread",
	RecordRead:   "record_read",
	RecordUnread: "record_unread",
}

func (r ReadState) String() string { return readNames[r] }

func ParseReadState(s string) (ReadState, error) {
	for state, name := range readNames {
		if name == s {
			return state, nil
		}
	}
	return ReadUnset, fmt.Errorf("unknown read state %q", s)
}

// Action is the mutation intent for one record, populated by the upstream
// rule stage. The engine only reads it. A label present in both add and
// remove nets to removed, because removes dispatch after adds.
type Action struct {
	LabelsToAdd    []string
	LabelsToRemove []string
	Categories     []gmail.Category
	Move           MoveState
	Importance     Importance
	Read           ReadState
}

// Entry pairs a record handle with its action. Thread is the record's
// parent thread, used for thread-scoped bulk calls; at thread granularity
// it equals the handle. Subject is diagnostics only.
type Entry[H comparable] struct {
	ID      H
	Thread  gmail.ThreadID
	Subject string
	Action  *Action
}

// Dataset is the batch handed to one engine invocation. Order affects only
// logging; grouping is unordered per dimension.
type Dataset[H comparable] []Entry[H]
