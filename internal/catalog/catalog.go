// Package catalog keeps the in-memory set of index definitions and aliases.
package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// Options configure a Catalog.
type Options struct {
	MaxIndexes int // 0 = unlimited
	MaxFields  int // per index, 0 = unlimited
}

// Info describes a catalog entry.
type Info struct {
	Definition *db.IndexDefinition
	Aliases    []string
	CreatedAt  time.Time
}

type entry struct {
	def       *db.IndexDefinition
	createdAt time.Time
}

// Catalog is safe for concurrent use. Returned definitions are copies.
type Catalog struct {
	mu      sync.RWMutex
	indexes map[string]*entry
	aliases map[string]string // alias -> index name
	opts    Options
	now     func() time.Time
}

// New creates an empty catalog.
func New(opts Options) *Catalog {
	return &Catalog{
		indexes: make(map[string]*entry),
		aliases: make(map[string]string),
		opts:    opts,
		now:     time.Now,
	}
}

// Create validates def and adds it. The name must not clash with an
// existing index or alias.
func (c *Catalog) Create(def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if c.opts.MaxFields > 0 && len(def.Fields) > c.opts.MaxFields {
		return queryerr.Classify(queryerr.LimitExceeded{What: "number of schema fields", Max: c.opts.MaxFields})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.indexes[def.Name]; ok {
		return queryerr.Classify(queryerr.DuplicateIndex{Name: def.Name})
	}
	if _, ok := c.aliases[def.Name]; ok {
		return queryerr.Classify(queryerr.AliasTaken{Alias: def.Name})
	}
	if c.opts.MaxIndexes > 0 && len(c.indexes) >= c.opts.MaxIndexes {
		return queryerr.Classify(queryerr.LimitExceeded{What: "number of indexes", Max: c.opts.MaxIndexes})
	}

	c.indexes[def.Name] = &entry{def: def.Clone(), createdAt: c.now()}
	return nil
}

// resolve maps an index name or alias to the entry. Caller holds the lock.
func (c *Catalog) resolve(name string) (*entry, bool) {
	if e, ok := c.indexes[name]; ok {
		return e, true
	}
	if target, ok := c.aliases[name]; ok {
		e, ok := c.indexes[target]
		return e, ok
	}
	return nil, false
}

// Get returns the definition for an index name or alias.
func (c *Catalog) Get(name string) (*db.IndexDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.resolve(name)
	if !ok {
		return nil, queryerr.Classify(queryerr.IndexNotFound{Name: name})
	}
	return e.def.Clone(), nil
}

// Info returns the definition together with its aliases.
func (c *Catalog) Info(name string) (Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.resolve(name)
	if !ok {
		return Info{}, queryerr.Classify(queryerr.IndexNotFound{Name: name})
	}
	return Info{
		Definition: e.def.Clone(),
		Aliases:    c.aliasesOf(e.def.Name),
		CreatedAt:  e.createdAt,
	}, nil
}

// Drop removes an index (addressed by name or alias) and every alias
// pointing at it.
func (c *Catalog) Drop(name string) (*db.IndexDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.resolve(name)
	if !ok {
		return nil, queryerr.Classify(queryerr.IndexNotFound{Name: name})
	}
	delete(c.indexes, e.def.Name)
	for alias, target := range c.aliases {
		if target == e.def.Name {
			delete(c.aliases, alias)
		}
	}
	return e.def, nil
}

// AddFields appends fields to an existing index schema.
func (c *Catalog) AddFields(name string, fields []db.IndexField) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.resolve(name)
	if !ok {
		return queryerr.Classify(queryerr.IndexNotFound{Name: name})
	}
	if err := db.ValidateFields(e.def.Fields, fields); err != nil {
		return err
	}
	if c.opts.MaxFields > 0 && len(e.def.Fields)+len(fields) > c.opts.MaxFields {
		return queryerr.Classify(queryerr.LimitExceeded{What: "number of schema fields", Max: c.opts.MaxFields})
	}

	def := e.def.Clone()
	def.Fields = append(def.Fields, fields...)
	e.def = def
	return nil
}

// List returns all index names, sorted.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.indexes))
	for name := range c.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of indexes.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indexes)
}
