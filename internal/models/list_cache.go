package models

// ListCache is the ordered local mirror of the remote distribution list,
// optionally followed by a placeholder row that stands for "create new".
// Row i maps to Entries()[i] for every i below Len(); the placeholder, when
// shown, is always the final row and is never counted as an entry.
//
// ListCache is not safe for concurrent use. It is owned by the UI loop.
type ListCache struct {
	entries     []*Distribution
	placeholder bool
}

// NewListCache creates an empty cache, with or without the placeholder row.
func NewListCache(placeholder bool) *ListCache {
	return &ListCache{placeholder: placeholder}
}

// ReplaceAll discards every entry and inserts the given ones in order, ahead
// of the placeholder. Nil entries stand for nothing and are skipped, so row
// indexes only ever map to real entries. The placeholder setting is
// untouched.
func (c *ListCache) ReplaceAll(entries []*Distribution) {
	c.entries = make([]*Distribution, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			c.entries = append(c.entries, e)
		}
	}
}

// Add appends an entry ahead of the placeholder. Entries sharing an id with
// an existing one are kept side by side. A nil entry is ignored.
func (c *ListCache) Add(entry *Distribution) {
	if entry == nil {
		return
	}
	c.entries = append(c.entries, entry)
}

// RemoveAt removes the entry at index. It returns false for the placeholder
// row or an out-of-range index.
func (c *ListCache) RemoveAt(index int) bool {
	if index < 0 || index >= len(c.entries) {
		return false
	}
	c.entries = append(c.entries[:index], c.entries[index+1:]...)
	return true
}

// Clear removes every entry. The placeholder stays.
func (c *ListCache) Clear() {
	c.entries = nil
}

// Lookup returns the entry shown at row, or nil when row is the placeholder
// or out of range. A nil result means no existing distribution is selected.
func (c *ListCache) Lookup(row int) *Distribution {
	if row < 0 || row >= len(c.entries) {
		return nil
	}
	return c.entries[row]
}

// Len returns the number of real entries.
func (c *ListCache) Len() int {
	return len(c.entries)
}

// Rows returns the number of rows shown, including the placeholder.
func (c *ListCache) Rows() int {
	if c.placeholder {
		return len(c.entries) + 1
	}
	return len(c.entries)
}

// Entries returns a copy of the entry slice.
func (c *ListCache) Entries() []*Distribution {
	out := make([]*Distribution, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *ListCache) HasPlaceholder() bool {
	return c.placeholder
}

func (c *ListCache) SetPlaceholder(show bool) {
	c.placeholder = show
}

// IsPlaceholderRow reports whether row is the trailing placeholder.
func (c *ListCache) IsPlaceholderRow(row int) bool {
	return c.placeholder && row == len(c.entries)
}

// IndexOfKey returns the row of the first entry whose origin bucket equals
// key, or -1. Entries are kept in fetch order, not sorted, so this is a
// linear scan.
func (c *ListCache) IndexOfKey(key string) int {
	for i, e := range c.entries {
		if e.OriginBucket == key {
			return i
		}
	}
	return -1
}

// IndexOfID returns the row of the first entry with the given id, or -1.
func (c *ListCache) IndexOfID(id string) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
