package catalog

import (
	"sort"

	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// AliasAdd points a new alias at an index. The alias must not already
// exist, either as an alias or as an index name.
func (c *Catalog) AliasAdd(alias, index string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.aliases[alias]; ok {
		return queryerr.Classify(queryerr.AliasTaken{Alias: alias})
	}
	return c.setAlias(alias, index)
}

// AliasUpdate points an alias at an index, creating or moving it.
func (c *Catalog) AliasUpdate(alias, index string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setAlias(alias, index)
}

func (c *Catalog) setAlias(alias, index string) error {
	if _, ok := c.indexes[alias]; ok {
		return queryerr.Classify(queryerr.AliasTaken{Alias: alias})
	}
	e, ok := c.resolve(index)
	if !ok {
		return queryerr.Classify(queryerr.IndexNotFound{Name: index})
	}
	c.aliases[alias] = e.def.Name
	return nil
}

// AliasDel removes an alias.
func (c *Catalog) AliasDel(alias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.aliases[alias]; !ok {
		return queryerr.Classify(queryerr.AliasNotFound{Alias: alias})
	}
	delete(c.aliases, alias)
	return nil
}

// aliasesOf lists aliases of an index, sorted. Caller holds the lock.
func (c *Catalog) aliasesOf(index string) []string {
	var out []string
	for alias, target := range c.aliases {
		if target == index {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}
