// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chain implements a hash table with a fixed number of buckets that
// resolves collisions with separate chaining. See
// https://en.wikipedia.org/wiki/Hash_table#Separate_chaining.
//
// # Buckets and chains
//
// A Table is created with a bucket count that never changes. The bucket for
// a key is key mod N, normalized into [0, N) so that negative keys land in a
// valid bucket:
//
//	bucketIndex(-1, 10)  == 9
//	bucketIndex(-11, 10) == 9
//
// Each bucket holds the head of a doubly-linked chain of Nodes. The links
// live in the Nodes themselves (the list is intrusive), so linking a Node
// into a chain never allocates. New keys are appended at the tail of their
// chain which preserves insertion order within a bucket. Adding a key that is
// already present replaces the old Node: the old Node is unlinked and
// destroyed and the new Node is appended at the then-current tail.
//
// A Table with zero buckets is valid but unusable: Get and Contains report
// not-found while Add and Remove report failure. The same holds for a nil
// *Table and for a Table that has been closed.
//
// # Ownership
//
// A Node passed to Add is owned by the Table from then on. The Table destroys
// it (resets every field) when it is removed, cleared, replaced, or when the
// Table is closed. Callers must not hold on to a Node across those
// operations. Add refuses a Node that is already owned by a Table.
//
// A Table is NOT goroutine-safe. Callers sharing a Table between goroutines
// must hold a lock for the duration of every call, since chain traversal and
// mutation are not atomic with respect to each other.
package chain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

const debug = false

var (
	// ErrNegativeSize is returned by New when asked for a negative number of
	// buckets.
	ErrNegativeSize = errors.New("chain: negative bucket count")
	// ErrAllocFailed is returned by New when the Allocator did not provide a
	// bucket array of the requested length.
	ErrAllocFailed = errors.New("chain: bucket allocation failed")
)

// Table is a fixed-size chained hash table from int64 keys to Nodes.
type Table struct {
	// The hash function used to compute Node.hashCode.
	hash HashFn
	seed uint64
	// The allocator for the bucket array. It is nil once the table has been
	// closed.
	allocator Allocator
	// buckets[i] is the head of the chain for bucket i, or nil if the bucket
	// is empty. The slice is never reallocated.
	buckets []*Node
	// The number of nodes linked across all chains.
	used int
}

// New constructs a new Table with size buckets. A size of 0 produces a valid
// Table on which every keyed operation fails.
func New(size int, options ...Option) (*Table, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}

	t := &Table{
		hash:      xxhashKey,
		seed:      rand.Uint64(),
		allocator: defaultAllocator{},
	}
	for _, op := range options {
		op.apply(t)
	}

	buckets := t.allocator.AllocBuckets(size)
	if len(buckets) != size {
		if buckets != nil {
			t.allocator.FreeBuckets(buckets)
		}
		return nil, fmt.Errorf("%w: requested %d buckets, got %d", ErrAllocFailed, size, len(buckets))
	}
	// A manual allocator may hand back recycled memory.
	for i := range buckets {
		buckets[i] = nil
	}
	t.buckets = buckets

	t.checkInvariants()
	return t, nil
}

// Close clears the table and releases the bucket array back to the
// configured allocator. It is invalid to use a Table after it has been
// closed, though Close itself is idempotent and any keyed operation on a
// closed Table fails the same way it does on a zero-bucket Table. Close
// always returns nil, so that callers can write:
//
//	t = t.Close()
func (t *Table) Close() *Table {
	if t == nil || t.allocator == nil {
		return nil
	}
	t.Clear()
	t.allocator.FreeBuckets(t.buckets)
	t.buckets = nil
	t.allocator = nil
	return nil
}

// Clear destroys every node in the table and empties every bucket. The
// bucket count is unchanged.
func (t *Table) Clear() {
	if t == nil {
		return
	}
	for i, n := range t.buckets {
		for n != nil {
			next := n.next
			n.Destroy()
			n = next
		}
		t.buckets[i] = nil
	}
	t.used = 0
	t.checkInvariants()
}

// Add links n into the table under key, transferring ownership of n to the
// table. If a node with the same key is already present it is removed and
// destroyed first; the new node is appended at the tail of the bucket's
// chain. Add returns false without side effects if the table is nil or has
// no buckets, if n is nil, or if n is already owned by a table.
func (t *Table) Add(key int64, n *Node) bool {
	if !t.usable() || n == nil || n.table != nil {
		return false
	}

	n.key = key
	n.hashCode = t.hash(key, t.seed)
	n.prev = nil
	n.next = nil

	i := bucketIndex(key, len(t.buckets))
	if old := t.find(i, key); old != nil {
		if debug {
			fmt.Printf("add(%d): replacing in bucket %d\n", key, i)
		}
		t.unlink(i, old)
		old.Destroy()
		t.used--
	}

	if head := t.buckets[i]; head == nil {
		t.buckets[i] = n
	} else {
		tail := head
		for !tail.IsTail() {
			tail = tail.next
		}
		tail.InsertAfter(n)
	}
	n.table = t
	t.used++

	if debug {
		fmt.Printf("add(%d): bucket=%d used=%d\n", key, i, t.used)
	}
	t.checkInvariants()
	return true
}

// Remove unlinks and destroys the node stored under key. It returns false
// if the key is not present or the table is unusable.
func (t *Table) Remove(key int64) bool {
	if !t.usable() {
		return false
	}

	i := bucketIndex(key, len(t.buckets))
	n := t.find(i, key)
	if n == nil {
		if debug {
			fmt.Printf("remove(%d): not found in bucket %d\n", key, i)
		}
		return false
	}

	t.unlink(i, n)
	n.Destroy()
	t.used--

	if debug {
		fmt.Printf("remove(%d): bucket=%d used=%d\n", key, i, t.used)
	}
	t.checkInvariants()
	return true
}

// Get returns the node stored under key, or ok=false if the key is not
// present or the table is unusable.
func (t *Table) Get(key int64) (n *Node, ok bool) {
	if !t.usable() {
		return nil, false
	}
	n = t.find(bucketIndex(key, len(t.buckets)), key)
	if debug {
		fmt.Printf("get(%d): found=%t\n", key, n != nil)
	}
	return n, n != nil
}

// Contains returns true if a node is stored under key.
func (t *Table) Contains(key int64) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of nodes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.used
}

// NumBuckets returns the number of buckets in the table. It is 0 for a nil
// or closed Table.
func (t *Table) NumBuckets() int {
	if t == nil {
		return 0
	}
	return len(t.buckets)
}

// All calls yield sequentially for each key and node in the table, visiting
// buckets in index order and each chain from head to tail. If yield returns
// false, iteration stops. The table must not be mutated during iteration.
func (t *Table) All(yield func(key int64, n *Node) bool) {
	if t == nil {
		return
	}
	for _, head := range t.buckets {
		for n := head; n != nil; n = n.next {
			if !yield(n.key, n) {
				return
			}
		}
	}
}

// Bucket calls yield for each node in the chain of bucket i, from head to
// tail. It is a noop if i is out of range.
func (t *Table) Bucket(i int, yield func(n *Node) bool) {
	if t == nil || i < 0 || i >= len(t.buckets) {
		return
	}
	for n := t.buckets[i]; n != nil; n = n.next {
		if !yield(n) {
			return
		}
	}
}

// String returns a rendering of every chain, one bucket per line.
func (t *Table) String() string {
	if t == nil {
		return "<nil>"
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "buckets=%d  used=%d\n", len(t.buckets), t.used)
	for i, head := range t.buckets {
		fmt.Fprintf(&buf, "  %4d:", i)
		for n := head; n != nil; n = n.next {
			fmt.Fprintf(&buf, " %d", n.key)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// usable returns true if keyed operations may index into the buckets.
func (t *Table) usable() bool {
	return t != nil && len(t.buckets) > 0
}

// find scans the chain of bucket i for key.
func (t *Table) find(i int, key int64) *Node {
	for n := t.buckets[i]; n != nil; n = n.next {
		if n.key == key {
			return n
		}
	}
	return nil
}

// unlink removes n from the chain of bucket i, moving the bucket head to n's
// successor if n was the head.
func (t *Table) unlink(i int, n *Node) {
	if n.IsHead() {
		t.buckets[i] = n.next
	}
	n.Unlink()
}

// bucketIndex returns key mod n normalized into [0, n). It returns 0 when
// n <= 0; callers must check for an unusable table before indexing.
func bucketIndex(key int64, n int) int {
	if n <= 0 {
		return 0
	}
	h := key % int64(n)
	if h < 0 {
		h += int64(n)
	}
	return int(h)
}

func (t *Table) checkInvariants() {
	if invariants {
		var used int
		seen := make(map[int64]int)
		for i, head := range t.buckets {
			if head != nil && !head.IsHead() {
				panic(fmt.Sprintf("invariant failed: bucket(%d): head %d has a predecessor\n%s",
					i, head.key, t))
			}
			for n := head; n != nil; n = n.next {
				if n.next != nil && n.next.prev != n {
					panic(fmt.Sprintf("invariant failed: bucket(%d): %d.next.prev != %d\n%s",
						i, n.key, n.key, t))
				}
				if j := bucketIndex(n.key, len(t.buckets)); j != i {
					panic(fmt.Sprintf("invariant failed: bucket(%d): %d belongs in bucket %d\n%s",
						i, n.key, j, t))
				}
				if j, ok := seen[n.key]; ok {
					panic(fmt.Sprintf("invariant failed: bucket(%d): %d duplicated from bucket %d\n%s",
						i, n.key, j, t))
				}
				seen[n.key] = i
				if n.table != t {
					panic(fmt.Sprintf("invariant failed: bucket(%d): %d not owned by table\n%s",
						i, n.key, t))
				}
				if h := t.hash(n.key, t.seed); h != n.hashCode {
					panic(fmt.Sprintf("invariant failed: bucket(%d): %d cached hash %016x != %016x\n%s",
						i, n.key, n.hashCode, h, t))
				}
				used++
			}
		}

		if used != t.used {
			panic(fmt.Sprintf("invariant failed: found %d linked nodes, but used count is %d\n%s",
				used, t.used, t))
		}
	}
}
