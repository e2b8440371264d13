// internal/gmail/types.go
package gmail

import "fmt"

type ThreadID string
type MessageID string
type LabelID string

// Label pairs a Gmail label ID with its user-visible name.
type Label struct {
	ID   LabelID
	Name string
}

// System label IDs the engine manipulates directly.
const (
	LabelInbox     LabelID = "INBOX"
	LabelUnread    LabelID = "UNREAD"
	LabelTrash     LabelID = "TRASH"
	LabelImportant LabelID = "IMPORTANT"
)

// Category is one of Gmail's mutually exclusive inbox tabs. The set is
// closed: reassigning a record removes every category not requested, so the
// complement must be computable from a fixed list.
type Category string

const (
	CategoryPrimary    Category = "primary"
	CategorySocial     Category = "social"
	CategoryPromotions Category = "promotions"
	CategoryUpdates    Category = "updates"
	CategoryForums     Category = "forums"
)

// Categories returns the complete category enumeration, in tab order.
func Categories() []Category {
	return []Category{
		CategoryPrimary,
		CategorySocial,
		CategoryPromotions,
		CategoryUpdates,
		CategoryForums,
	}
}

// ParseCategory maps a decisions-file name to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPrimary, CategorySocial, CategoryPromotions, CategoryUpdates, CategoryForums:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Complement returns every category not present in requested, in
// enumeration order.
func Complement(requested []Category) []Category {
	want := make(map[Category]struct{}, len(requested))
	for _, c := range requested {
		want[c] = struct{}{}
	}
	all := Categories()
	out := make([]Category, 0, len(all)-len(want))
	for _, c := range all {
		if _, ok := want[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// SystemLabel returns the Gmail system label backing a category.
func (c Category) SystemLabel() LabelID {
	switch c {
	case CategoryPrimary:
		return "CATEGORY_PERSONAL"
	case CategorySocial:
		return "CATEGORY_SOCIAL"
	case CategoryPromotions:
		return "CATEGORY_PROMOTIONS"
	case CategoryUpdates:
		return "CATEGORY_UPDATES"
	case CategoryForums:
		return "CATEGORY_FORUMS"
	}
	return ""
}

func (c Category) String() string { return string(c) }
