package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache answers statements marked UseCache from an expiring LRU of previous
// results. Statements without the hint always reach the wrapped executor.
// Cached rows are shared between callers and must not be mutated.
type Cache struct {
	next    Executor
	results *lru.LRU[string, []Row]
}

// NewCache wraps next with a cache holding up to size results for ttl
func NewCache(next Executor, size int, ttl time.Duration) *Cache {
	return &Cache{
		next:    next,
		results: lru.NewLRU[string, []Row](size, nil, ttl),
	}
}

// Execute serves cached rows when allowed, otherwise runs the statement.
// Failed statements are never cached.
func (c *Cache) Execute(ctx context.Context, stmt Statement) ([]Row, error) {
	if !stmt.UseCache {
		return c.next.Execute(ctx, stmt)
	}

	key := cacheKey(stmt)
	if rows, ok := c.results.Get(key); ok {
		return rows, nil
	}

	rows, err := c.next.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	c.results.Add(key, rows)

	return rows, nil
}

// Len returns the number of cached results
func (c *Cache) Len() int {
	return c.results.Len()
}

func cacheKey(stmt Statement) string {
	var sb strings.Builder
	sb.WriteString(stmt.SQL)
	for _, arg := range stmt.Args {
		sb.WriteByte(0)
		fmt.Fprintf(&sb, "%T:%v", arg, arg)
	}
	return sb.String()
}
