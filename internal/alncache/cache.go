// Package alncache memoizes alignment results.
//
// Entries are partitioned first by alignment mode, then by scoring model
// identifier, and keyed by the literal (A, B) sequence pair. A Cache is
// private to one aligner and is not safe for concurrent use; processes
// share results only through SaveTo and LoadFrom.
package alncache

import (
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/shenwei356/go-logging"
)

var log = logging.MustGetLogger("seqalign")

type pairKey struct {
	a, b string
}

type partition map[pairKey]alignment.Result

// Cache is a two-level alignment cache.
type Cache struct {
	parts [2]map[string]partition // indexed by alignment.Mode
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		parts: [2]map[string]partition{
			make(map[string]partition),
			make(map[string]partition),
		},
	}
}

func (c *Cache) modeParts(mode alignment.Mode) map[string]partition {
	if mode == alignment.Local {
		return c.parts[1]
	}
	return c.parts[0]
}

// Lookup returns the result stored for (a, b) under the given mode and
// scoring model. The pair is ordered: (a, b) and (b, a) are different keys.
func (c *Cache) Lookup(mode alignment.Mode, modelID, a, b string) (alignment.Result, bool) {
	p, ok := c.modeParts(mode)[modelID]
	if !ok {
		return alignment.Result{}, false
	}
	r, ok := p[pairKey{a, b}]
	if !ok {
		return alignment.Result{}, false
	}
	return r.Clone(), true
}

// Store records the result for (a, b), replacing any existing entry.
func (c *Cache) Store(mode alignment.Mode, modelID, a, b string, r alignment.Result) {
	parts := c.modeParts(mode)
	p, ok := parts[modelID]
	if !ok {
		p = make(partition, 1024)
		parts[modelID] = p
	}
	p[pairKey{a, b}] = r.Clone()
}

// Len returns the number of entries in all partitions.
func (c *Cache) Len() int {
	n := 0
	for _, parts := range c.parts {
		for _, p := range parts {
			n += len(p)
		}
	}
	return n
}

// PartitionLen returns the number of entries of one partition.
func (c *Cache) PartitionLen(mode alignment.Mode, modelID string) int {
	return len(c.modeParts(mode)[modelID])
}

// Merge copies every entry of other into c. Entries already in c are kept.
func (c *Cache) Merge(other *Cache) {
	for m := range other.parts {
		for id, src := range other.parts[m] {
			dst, ok := c.parts[m][id]
			if !ok {
				dst = make(partition, len(src))
				c.parts[m][id] = dst
			}
			for k, r := range src {
				if _, ok := dst[k]; !ok {
					dst[k] = r
				}
			}
		}
	}
}

// Reset drops all entries.
func (c *Cache) Reset() {
	c.parts[0] = make(map[string]partition)
	c.parts[1] = make(map[string]partition)
}
