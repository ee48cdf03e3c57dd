package model

import "fmt"

// Element is a named node that can live in a Collection.
type Element interface {
	Node
	GetName() string
}

// Collection is an insertion-ordered list of owned elements with a lazily
// built, case-sensitive name index.
type Collection[T Element] struct {
	owner Node
	items []T
	index map[string][]T
}

// NewCollection creates an empty collection owned by owner.
func NewCollection[T Element](owner Node) *Collection[T] {
	return &Collection[T]{owner: owner}
}

// Add transfers ownership of item to the collection's owner.
// Adding an element that already has an owner is an invariant violation.
func (c *Collection[T]) Add(item T) {
	if item.Parent() != nil {
		panic(&InvariantError{Message: fmt.Sprintf("element %q already has an owner", item.GetName())})
	}
	item.setParent(c.owner)
	c.items = append(c.items, item)
	c.index = nil
}

// Len returns the number of elements.
func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the i-th element in insertion order.
func (c *Collection[T]) At(i int) T { return c.items[i] }

// Items returns the elements in insertion order.
func (c *Collection[T]) Items() []T { return c.items }

// Contains reports whether item is in the collection.
func (c *Collection[T]) Contains(item T) bool {
	for _, it := range c.items {
		if any(it) == any(item) {
			return true
		}
	}
	return false
}

// Find returns the first element with the given name.
func (c *Collection[T]) Find(name string) (T, bool) {
	if found := c.FindAll(name); len(found) > 0 {
		return found[0], true
	}
	var zero T
	return zero, false
}

// FindAll returns every element with the given name, e.g. overloads.
func (c *Collection[T]) FindAll(name string) []T {
	if c.index == nil {
		c.index = make(map[string][]T, len(c.items))
		for _, it := range c.items {
			c.index[it.GetName()] = append(c.index[it.GetName()], it)
		}
	}
	return c.index[name]
}

// Invalidate drops the name index. Call it after renaming an element.
func (c *Collection[T]) Invalidate() {
	c.index = nil
}
