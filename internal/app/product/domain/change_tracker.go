package domain

import "sort"

// Field names an aggregate part for change tracking.
type Field string

// Tracked aggregate parts
const (
	FieldDetails  Field = "details"
	FieldVariants Field = "variants"
	FieldOffers   Field = "offers"
	FieldUSP      Field = "usp"
)

// ChangeTracker records which parts of the aggregate were modified since load.
// Stores skip the write entirely when nothing is dirty.
type ChangeTracker struct {
	dirty map[Field]struct{}
}

// NewChangeTracker creates an empty tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{dirty: make(map[Field]struct{})}
}

// MarkDirty flags the given parts as modified.
func (ct *ChangeTracker) MarkDirty(fields ...Field) {
	for _, f := range fields {
		ct.dirty[f] = struct{}{}
	}
}

// Dirty reports whether a part has been modified.
func (ct *ChangeTracker) Dirty(field Field) bool {
	_, ok := ct.dirty[field]
	return ok
}

// Clear resets the tracker after a successful commit.
func (ct *ChangeTracker) Clear() {
	ct.dirty = make(map[Field]struct{})
}

// HasChanges returns true if anything has been modified.
func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.dirty) > 0
}

// DirtyFields returns the modified parts in sorted order.
func (ct *ChangeTracker) DirtyFields() []Field {
	fields := make([]Field, 0, len(ct.dirty))
	for f := range ct.dirty {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
