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

package chain

// Record is the payload carried by a Node.
type Record struct {
	FullName string
	Address  string
	City     string
	State    string
	Zip      string
}

// Node is an element of a bucket chain. The links are intrusive: a Node
// records its own position in the chain it belongs to, and it belongs to at
// most one chain at a time.
//
// A Node is created with NewNode, populated, and then handed to Table.Add.
// From that point on the Table owns the Node and destroys it on Remove,
// Clear, Close, or when a later Add replaces it. A caller must not keep using
// a Node after the Table has destroyed it.
type Node struct {
	Record

	key      int64
	hashCode uint64

	// prev is nil for the head of a chain and next is nil for the tail.
	prev *Node
	next *Node

	// table is the Table the node is linked into, or nil.
	table *Table
}

// NewNode returns a new unlinked Node with a zero payload.
func NewNode() *Node {
	return &Node{}
}

// NewRecordNode returns a new unlinked Node carrying r.
func NewRecordNode(r Record) *Node {
	return &Node{Record: r}
}

// Destroy releases the payload and resets every field of n. It is a noop on
// a nil Node and always returns nil, so that callers can write:
//
//	n = n.Destroy()
func (n *Node) Destroy() *Node {
	if n != nil {
		*n = Node{}
	}
	return nil
}

// Key returns the key the node was added under.
func (n *Node) Key() int64 {
	return n.key
}

// HashCode returns the hash of the node's key cached when it was added, or 0
// for a node that has never been added to a Table.
func (n *Node) HashCode() uint64 {
	return n.hashCode
}

// Next returns the next node in the chain, or nil at the tail.
func (n *Node) Next() *Node {
	return n.next
}

// Prev returns the previous node in the chain, or nil at the head.
func (n *Node) Prev() *Node {
	return n.prev
}

// Owned returns true if n is currently linked into a Table.
func (n *Node) Owned() bool {
	return n.table != nil
}

// IsHead returns true if n has no predecessor.
func (n *Node) IsHead() bool {
	return n.prev == nil
}

// IsTail returns true if n has no successor.
func (n *Node) IsTail() bool {
	return n.next == nil
}

// InsertAfter splices nn into the chain immediately after n. It is a noop if
// either node is nil.
func (n *Node) InsertAfter(nn *Node) {
	if n == nil || nn == nil {
		return
	}
	nn.next = n.next
	nn.prev = n
	if n.next != nil {
		n.next.prev = nn
	}
	n.next = nn
}

// InsertBefore splices nn into the chain immediately before n. It is a noop
// if either node is nil.
func (n *Node) InsertBefore(nn *Node) {
	if n == nil || nn == nil {
		return
	}
	nn.prev = n.prev
	nn.next = n
	if n.prev != nil {
		n.prev.next = nn
	}
	n.prev = nn
}

// Unlink removes n from its chain by connecting its neighbors to each other
// and clears n's links. The payload is left untouched. Unlink does not fix
// up a chain head held elsewhere; Table.Remove does that. n must not be nil.
func (n *Node) Unlink() {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
}
