// Package avl implements a generic ordered set on an AVL tree.
//
// Insert, Get, Has and Delete are O(log n); Ascend and All visit items in
// ascending order in O(n). Inserting an item that compares equal to a member
// is a no-op, so the tree never holds duplicates.
//
// A Tree is not safe for concurrent use.
package avl

import "iter"

// CompareFunc orders items: negative if a < b, zero if equal, positive if a > b.
type CompareFunc[T any] func(a, b T) int

// ItemIterator is called for each item by Ascend; returning false stops the walk.
type ItemIterator[T any] func(item T) bool

type node[T any] struct {
	item        T
	left, right *node[T]
	height      int8
}

// Tree is an AVL-balanced ordered set.
type Tree[T any] struct {
	root *node[T]
	cmp  CompareFunc[T]
	size int
}

// New returns an empty tree ordered by cmp.
func New[T any](cmp CompareFunc[T]) *Tree[T] {
	return &Tree[T]{cmp: cmp}
}

// Len returns the number of items.
func (t *Tree[T]) Len() int { return t.size }

// Height returns the height of the tree; 0 when empty.
func (t *Tree[T]) Height() int { return int(height(t.root)) }

// Clear removes all items.
func (t *Tree[T]) Clear() {
	t.root = nil
	t.size = 0
}

// Get returns the member equal to key, if any.
func (t *Tree[T]) Get(key T) (T, bool) {
	n := t.root
	for n != nil {
		c := t.cmp(key, n.item)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.item, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether a member equal to key exists.
func (t *Tree[T]) Has(key T) bool {
	_, ok := t.Get(key)
	return ok
}

// Min returns the smallest item.
func (t *Tree[T]) Min() (T, bool) {
	var zero T
	if t.root == nil {
		return zero, false
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return n.item, true
}

// Insert adds item and reports whether it was added. An existing equal
// member is left untouched.
func (t *Tree[T]) Insert(item T) bool {
	var added bool
	t.root, added = t.insert(t.root, item)
	if added {
		t.size++
	}
	return added
}

func (t *Tree[T]) insert(n *node[T], item T) (*node[T], bool) {
	if n == nil {
		return &node[T]{item: item, height: 1}, true
	}
	var added bool
	c := t.cmp(item, n.item)
	switch {
	case c < 0:
		n.left, added = t.insert(n.left, item)
	case c > 0:
		n.right, added = t.insert(n.right, item)
	default:
		return n, false
	}
	if !added {
		return n, false
	}
	return rebalance(n), true
}

// Delete removes the member equal to key and reports whether one was found.
func (t *Tree[T]) Delete(key T) bool {
	var removed bool
	t.root, removed = t.delete(t.root, key)
	if removed {
		t.size--
	}
	return removed
}

func (t *Tree[T]) delete(n *node[T], key T) (*node[T], bool) {
	if n == nil {
		return nil, false
	}
	var removed bool
	c := t.cmp(key, n.item)
	switch {
	case c < 0:
		n.left, removed = t.delete(n.left, key)
	case c > 0:
		n.right, removed = t.delete(n.right, key)
	default:
		if n.left == nil {
			return n.right, true
		}
		if n.right == nil {
			return n.left, true
		}
		// two children: replace with the in-order successor
		var succ *node[T]
		n.right, succ = removeMin(n.right)
		succ.left, succ.right = n.left, n.right
		n = succ
		removed = true
	}
	if !removed {
		return n, false
	}
	return rebalance(n), true
}

// removeMin detaches the leftmost node of n's subtree and returns the new
// subtree root together with the detached node.
func removeMin[T any](n *node[T]) (*node[T], *node[T]) {
	if n.left == nil {
		return n.right, n
	}
	var m *node[T]
	n.left, m = removeMin(n.left)
	return rebalance(n), m
}

// Ascend calls fn for every item in ascending order until fn returns false.
// The walk uses an explicit stack.
func (t *Tree[T]) Ascend(fn ItemIterator[T]) {
	var stack []*node[T]
	n := t.root
	for n != nil || len(stack) > 0 {
		for n != nil {
			stack = append(stack, n)
			n = n.left
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n.item) {
			return
		}
		n = n.right
	}
}

// All returns an iterator over the items in ascending order.
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		t.Ascend(func(item T) bool { return yield(item) })
	}
}

// Items returns the items in ascending order.
func (t *Tree[T]) Items() []T {
	out := make([]T, 0, t.size)
	t.Ascend(func(item T) bool {
		out = append(out, item)
		return true
	})
	return out
}

func height[T any](n *node[T]) int8 {
	if n == nil {
		return 0
	}
	return n.height
}

func updateHeight[T any](n *node[T]) {
	n.height = max(height(n.left), height(n.right)) + 1
}

func balanceOf[T any](n *node[T]) int8 {
	return height(n.left) - height(n.right)
}

// rebalance restores the AVL invariant at n after one of its subtrees changed
// height by at most one, and returns the new subtree root.
func rebalance[T any](n *node[T]) *node[T] {
	updateHeight(n)
	switch b := balanceOf(n); {
	case b > 1:
		if balanceOf(n.left) < 0 {
			// left right
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case b < -1:
		if balanceOf(n.right) > 0 {
			// right left
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	default:
		return n
	}
}

func rotateRight[T any](n *node[T]) *node[T] {
	l := n.left
	n.left = l.right
	l.right = n
	updateHeight(n)
	updateHeight(l)
	return l
}

func rotateLeft[T any](n *node[T]) *node[T] {
	r := n.right
	n.right = r.left
	r.left = n
	updateHeight(n)
	updateHeight(r)
	return r
}
