package profile

import (
	"sync/atomic"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
)

// Catalog is an immutable set of entries keyed by trial ID, in corpus order.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog keys entries by trial ID. A repeated ID keeps its first entry.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		id := e.Profile.TrialID
		if _, dup := c.index[id]; dup {
			logger.Log.WithField("trial_id", id).Warn("Duplicate trial in corpus, keeping first")
			continue
		}
		c.index[id] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *Catalog) Get(trialID string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.index[trialID]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns the catalog's backing slice; callers must not modify it.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return c.entries
}

// Store holds the active catalog. Readers never block a rebuild: a new catalog
// is swapped in whole.
type Store struct {
	current atomic.Pointer[Catalog]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(NewCatalog(nil))
	return s
}

func (s *Store) Catalog() *Catalog {
	return s.current.Load()
}

// Swap installs c and returns the catalog it replaced.
func (s *Store) Swap(c *Catalog) *Catalog {
	if c == nil {
		c = NewCatalog(nil)
	}
	return s.current.Swap(c)
}
