package history

// Projection is the ordered result list currently shown to the consumer.
// It is not safe for concurrent use; Model guards it.
type Projection struct {
	entries []Entry
}

// RowCount returns the number of rows in the projection.
func (p *Projection) RowCount() int {
	return len(p.entries)
}

// EntryAt returns the entry at index i. The boolean is false when i is out
// of range.
func (p *Projection) EntryAt(i int) (Entry, bool) {
	if i < 0 || i >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Data returns the field selected by role for row i.
func (p *Projection) Data(i int, role Role) (string, bool) {
	e, ok := p.EntryAt(i)
	if !ok {
		return "", false
	}
	return role.Value(e)
}

// Replace swaps the whole projection for entries. The slice is copied.
func (p *Projection) Replace(entries []Entry) {
	p.entries = append(make([]Entry, 0, len(entries)), entries...)
}

// RemoveAt deletes row i and returns the removed entry. Out-of-range
// indices leave the projection untouched and return false.
func (p *Projection) RemoveAt(i int) (Entry, bool) {
	e, ok := p.EntryAt(i)
	if !ok {
		return Entry{}, false
	}
	p.entries = append(p.entries[:i:i], p.entries[i+1:]...)
	return e, true
}

// Entries returns a copy of the current rows.
func (p *Projection) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}
