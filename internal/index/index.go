package index

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"buildall/internal/spec"
)

const lookupCacheSize = 512

// Index is a filename keyed collection of records.
type Index struct {
	mu      sync.RWMutex
	records map[string]Record
	lookups *lru.Cache[string, []Record]
}

// New returns an empty index holding the given records.
func New(records ...Record) *Index {
	cache, err := lru.New[string, []Record](lookupCacheSize)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	idx := &Index{records: make(map[string]Record, len(records)), lookups: cache}
	for _, r := range records {
		idx.records[r.Key()] = r
	}
	return idx
}

// Add inserts or replaces a record.
func (i *Index) Add(records ...Record) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, r := range records {
		i.records[r.Key()] = r
	}
	i.lookups.Purge()
}

// Merge adds every record of other.
func (i *Index) Merge(other *Index) {
	i.Add(other.Records()...)
}

// Contains reports whether a record is stored under filename.
func (i *Index) Contains(filename string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.records[filename]
	return ok
}

// Get returns the record stored under filename.
func (i *Index) Get(filename string) (Record, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	r, ok := i.records[filename]
	return r, ok
}

// Len returns the number of records.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

// Records returns all records sorted by filename.
func (i *Index) Records() []Record {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Record, 0, len(i.records))
	for _, r := range i.records {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key() < out[b].Key() })
	return out
}

// Clone returns an independent copy. Adding to the clone never affects the
// original.
func (i *Index) Clone() *Index {
	return New(i.Records()...)
}

// Lookup returns every record matching ms, ordered by name, version, build
// number and filename.
func (i *Index) Lookup(ms spec.MatchSpec) []Record {
	key := ms.String()
	if cached, ok := i.lookups.Get(key); ok {
		return append([]Record(nil), cached...)
	}

	i.mu.RLock()
	var out []Record
	for _, r := range i.records {
		if r.Matches(ms) {
			out = append(out, r)
		}
	}
	i.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		ra, rb := out[a], out[b]
		if ra.Name != rb.Name {
			return ra.Name < rb.Name
		}
		if c := spec.CompareVersions(ra.Version, rb.Version); c != 0 {
			return c < 0
		}
		if ra.BuildNumber != rb.BuildNumber {
			return ra.BuildNumber < rb.BuildNumber
		}
		return ra.Key() < rb.Key()
	})
	i.lookups.Add(key, out)
	return append([]Record(nil), out...)
}
