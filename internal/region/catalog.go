// v0
// internal/region/catalog.go
package region

// Entry binds a region identifier to its backend key and display name. The
// backend key doubles as the store collection name holding that region's raw
// meeting records.
type Entry struct {
	ID   int
	Key  string
	Name string
}

// Catalog is the authoritative, immutable id/key/name mapping shared by every
// component that resolves regions. Construct it once at process start and
// pass it by pointer; it is never mutated afterwards.
type Catalog struct {
	entries []Entry
	byID    map[int]Entry
	byKey   map[string]Entry
}

var defaultEntries = []Entry{
	{ID: 1, Key: "Muscat", Name: "Muscat"},
	{ID: 2, Key: "Al_Batinah_North", Name: "Al Batinah North"},
	{ID: 3, Key: "Musandam", Name: "Musandam"},
	{ID: 4, Key: "Al_Buraimi", Name: "Al Buraimi"},
	{ID: 5, Key: "ADhahirah", Name: "Al Dhahira North"},
	{ID: 6, Key: "ADakhiliya", Name: "Dakhiliyah"},
	{ID: 7, Key: "ASharqiyah_North", Name: "Al Sharqiyah North"},
	{ID: 8, Key: "Al_Wusta", Name: "Al Wusta"},
	{ID: 9, Key: "Dhofar", Name: "Dhofar"},
	{ID: 10, Key: "Al_Batinah_South", Name: "Al Batinah South"},
	{ID: 11, Key: "ASharqiyah_South", Name: "Al Sharqiyah South"},
}

// NewCatalog builds the catalog for the fixed deployment region set.
func NewCatalog() *Catalog {
	return newCatalog(defaultEntries)
}

func newCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byID:    make(map[int]Entry, len(entries)),
		byKey:   make(map[string]Entry, len(entries)),
	}
	copy(c.entries, entries)
	for _, e := range c.entries {
		c.byID[e.ID] = e
		c.byKey[e.Key] = e
	}
	return c
}

// Entries returns a defensive copy of all regions in identifier order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports the number of regions in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// ByID resolves a region identifier.
func (c *Catalog) ByID(id int) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// ByKey resolves a backend key.
func (c *Catalog) ByKey(key string) (Entry, bool) {
	e, ok := c.byKey[key]
	return e, ok
}

// NameByID returns the display name for an identifier, or "" when unknown.
func (c *Catalog) NameByID(id int) string {
	if e, ok := c.byID[id]; ok {
		return e.Name
	}
	return ""
}
