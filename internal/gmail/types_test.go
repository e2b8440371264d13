package gmail

import (
	"reflect"
	"testing"
)

func TestComplement(t *testing.T) {
	tests := []struct {
		name      string
		requested []Category
		want      []Category
	}{
		{
			name:      "single",
			requested: []Category{CategorySocial},
			want:      []Category{CategoryPrimary, CategoryPromotions, CategoryUpdates, CategoryForums},
		},
		{
			name:      "empty",
			requested: nil,
			want:      Categories(),
		},
		{
			name:      "all",
			requested: Categories(),
			want:      []Category{},
		},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got := Complement(tc.requested)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	if _, err := ParseCategory("promotions"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseCategory("spam"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestCategorySystemLabels(t *testing.T) {
	for _, c := range Categories() {
		if c.SystemLabel() == "" {
			t.Fatalf("category %s has no system label", c)
		}
	}
	if got := CategoryPrimary.SystemLabel(); got != "CATEGORY_PERSONAL" {
		t.Fatalf("primary maps to %s", got)
	}
}
