// Package cache provides a weight-budgeted LRU cache for values whose
// memory footprints vary.
package cache

import (
	"sync"

	"github.com/pkg/errors"
)

// Cache stores arbitrary values under a total weight budget, evicting the
// least recently used entries when the budget is exceeded.
type Cache interface {
	// Insert adds a value with the given weight. Fails if the key is
	// already present.
	Insert(key string, value interface{}, weight int) error

	// Retrieve fetches a value by key, marking it most recently used.
	Retrieve(key string) (interface{}, bool)

	// Weight returns the current total weight of cached values.
	Weight() int

	// Budget returns the maximum total weight.
	Budget() int

	// Clear removes all entries.
	Clear()
}

type node struct {
	next   *node
	prev   *node
	key    string
	value  interface{}
	weight int
}

// cache keeps a lookup map for O(1) access and a doubly-linked list in
// recency order for eviction.
type cache struct {
	mu     sync.Mutex
	head   *node
	tail   *node
	lookup map[string]*node
	weight int
	budget int
}

func NewCache(budget int) Cache {
	return &cache{
		lookup: make(map[string]*node),
		budget: budget,
	}
}

func (c *cache) Weight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

func (c *cache) Budget() int {
	return c.budget
}

func (c *cache) Insert(key string, value interface{}, weight int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lookup[key]; ok {
		return errors.New("key already exists in cache")
	}

	n := &node{
		key:    key,
		value:  value,
		weight: weight,
		next:   c.head,
	}
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}

	c.lookup[key] = n
	c.weight += weight

	for c.weight > c.budget && c.tail != nil {
		evicted := c.tail
		if c.tail.prev != nil {
			c.tail.prev.next = nil
		} else {
			c.head = nil
		}
		c.tail = c.tail.prev
		c.weight -= evicted.weight
		delete(c.lookup, evicted.key)
	}

	return nil
}

func (c *cache) Retrieve(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.lookup[key]
	if !ok {
		return nil, false
	}

	if n != c.head {
		if n.next != nil {
			n.next.prev = n.prev
		}
		if n.prev != nil {
			n.prev.next = n.next
		}
		if n == c.tail {
			c.tail = n.prev
		}

		n.next = c.head
		n.prev = nil
		if c.head != nil {
			c.head.prev = n
		}
		c.head = n
	}

	return n.value, true
}

func (c *cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[string]*node)
	c.weight = 0
}
