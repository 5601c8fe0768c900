package domain

// Collection is an indexed, read-only snapshot of the items loaded for one
// report pass. It preserves the input order and indexes items by id and by
// parent id so the hierarchy can be walked without another fetch.
type Collection struct {
	items      []WorkItem
	byID       map[int64]int
	children   map[int64][]int
	duplicates int
}

// NewCollection indexes items. When an id appears more than once (e.g. from
// overlapping pages) the first occurrence wins.
func NewCollection(items []WorkItem) *Collection {
	c := &Collection{
		items:    make([]WorkItem, 0, len(items)),
		byID:     make(map[int64]int, len(items)),
		children: make(map[int64][]int),
	}
	for _, w := range items {
		if _, seen := c.byID[w.ID]; seen {
			c.duplicates++
			continue
		}
		idx := len(c.items)
		c.items = append(c.items, w)
		c.byID[w.ID] = idx
		if w.ParentID != nil {
			c.children[*w.ParentID] = append(c.children[*w.ParentID], idx)
		}
	}
	return c
}

// Len returns the number of distinct items.
func (c *Collection) Len() int { return len(c.items) }

// Duplicates returns how many input records were dropped as repeated ids.
func (c *Collection) Duplicates() int { return c.duplicates }

// Items returns a copy of the items in input order.
func (c *Collection) Items() []WorkItem {
	out := make([]WorkItem, len(c.items))
	copy(out, c.items)
	return out
}

// Children returns the loaded direct children of id in input order.
func (c *Collection) Children(id int64) []WorkItem {
	idxs := c.children[id]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]WorkItem, len(idxs))
	for i, idx := range idxs {
		out[i] = c.items[idx]
	}
	return out
}

// ChildCount returns the number of loaded direct children of id.
func (c *Collection) ChildCount(id int64) int {
	return len(c.children[id])
}

// WithTag returns the items carrying tag, in input order.
func (c *Collection) WithTag(tag RequirementTag) []WorkItem {
	var out []WorkItem
	for i := range c.items {
		if c.items[i].HasTag(tag) {
			out = append(out, c.items[i])
		}
	}
	return out
}
