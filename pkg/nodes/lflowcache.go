package nodes

import "github.com/cuemby/ovncontroller/pkg/translate"

// LflowCacheEntry is one cached translation result, keyed by a fingerprint
// of the logical flow that produced it so an unchanged logical flow never
// pays translation cost twice (spec.md §4.4).
type LflowCacheEntry struct {
	Fingerprint string
	Entries     []translate.FlowEntry
	sizeBytes   int
}

func entrySize(fp string, entries []translate.FlowEntry) int {
	size := len(fp)
	for _, e := range entries {
		size += len(e.Match) + len(e.Actions) + 16
	}
	return size
}

// LflowCache bounds the translated-flow cache by entry count and byte size,
// trimming down to a high-water mark once either limit is exceeded (spec.md
// §4.4, §6 lflow-cache tuning keys).
type LflowCache struct {
	MaxEntries   int
	MaxBytes     int
	TrimWmarkPct int // trim target as a percentage of the limit, e.g. 50

	entries   map[string]*LflowCacheEntry
	order     []string // insertion order, used as the trim eviction order
	sizeBytes int
}

// NewLflowCache creates a cache with the given limits. A zero limit means
// unbounded on that dimension.
func NewLflowCache(maxEntries, maxBytes, trimWmarkPct int) *LflowCache {
	if trimWmarkPct <= 0 || trimWmarkPct > 100 {
		trimWmarkPct = 50
	}
	return &LflowCache{
		MaxEntries:   maxEntries,
		MaxBytes:     maxBytes,
		TrimWmarkPct: trimWmarkPct,
		entries:      make(map[string]*LflowCacheEntry),
	}
}

// Get returns the cached entries for fingerprint, if present.
func (c *LflowCache) Get(fingerprint string) ([]translate.FlowEntry, bool) {
	e, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	return e.Entries, true
}

// Put stores entries under fingerprint, trimming the cache afterward if a
// limit was exceeded.
func (c *LflowCache) Put(fingerprint string, entries []translate.FlowEntry) {
	if old, ok := c.entries[fingerprint]; ok {
		c.sizeBytes -= old.sizeBytes
	} else {
		c.order = append(c.order, fingerprint)
	}
	size := entrySize(fingerprint, entries)
	c.entries[fingerprint] = &LflowCacheEntry{Fingerprint: fingerprint, Entries: entries, sizeBytes: size}
	c.sizeBytes += size
	c.trim()
}

// Evict removes fingerprint from the cache, e.g. when its logical flow row
// is deleted.
func (c *LflowCache) Evict(fingerprint string) {
	e, ok := c.entries[fingerprint]
	if !ok {
		return
	}
	c.sizeBytes -= e.sizeBytes
	delete(c.entries, fingerprint)
}

func (c *LflowCache) trim() {
	overEntries := c.MaxEntries > 0 && len(c.entries) > c.MaxEntries
	overBytes := c.MaxBytes > 0 && c.sizeBytes > c.MaxBytes
	if !overEntries && !overBytes {
		return
	}

	targetEntries := c.MaxEntries * c.TrimWmarkPct / 100
	targetBytes := c.MaxBytes * c.TrimWmarkPct / 100

	kept := c.order[:0:0]
	for _, fp := range c.order {
		e, ok := c.entries[fp]
		if !ok {
			continue
		}
		overEntries = c.MaxEntries > 0 && len(c.entries) > targetEntries
		overBytes = c.MaxBytes > 0 && c.sizeBytes > targetBytes
		if overEntries || overBytes {
			delete(c.entries, fp)
			c.sizeBytes -= e.sizeBytes
			continue
		}
		kept = append(kept, fp)
	}
	c.order = kept
}

// Len returns the number of cached entries.
func (c *LflowCache) Len() int { return len(c.entries) }

// SizeBytes returns the cache's current estimated byte size.
func (c *LflowCache) SizeBytes() int { return c.sizeBytes }

// Flush empties the cache, used by the lflow-cache/flush unixctl command.
func (c *LflowCache) Flush() {
	c.entries = make(map[string]*LflowCacheEntry)
	c.order = nil
	c.sizeBytes = 0
}
