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

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Option provides an interface to do work on a Table while it is being
// created.
type Option interface {
	apply(t *Table)
}

// HashFn computes the hash code cached on a node when it is added to a
// Table. It does not affect which bucket a key lands in.
type HashFn func(key int64, seed uint64) uint64

// xxhashKey is the default HashFn. It hashes the little-endian encoding of
// the key followed by the seed.
func xxhashKey(key int64, seed uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(key))
	binary.LittleEndian.PutUint64(buf[8:], seed)
	return xxhash.Sum64(buf[:])
}

type hashOption struct {
	hash HashFn
}

func (op hashOption) apply(t *Table) {
	t.hash = op.hash
}

// WithHash is an option to specify the function used to compute the cached
// node hash codes of a Table.
func WithHash(hash HashFn) Option {
	return hashOption{hash}
}

type seedOption struct {
	seed uint64
}

func (op seedOption) apply(t *Table) {
	t.seed = op.seed
}

// WithSeed is an option to fix the hash seed of a Table. By default every
// Table uses a random seed.
func WithSeed(seed uint64) Option {
	return seedOption{seed}
}

// Allocator specifies an interface for allocating and releasing the bucket
// array used by a Table. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that buckets be
// freed then Table.Close must be called in order to ensure FreeBuckets is
// called.
type Allocator interface {
	// AllocBuckets should return a slice equivalent to make([]*Node, n). A
	// slice of any other length is treated as an allocation failure.
	AllocBuckets(n int) []*Node

	// FreeBuckets can optionally release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocBuckets.
	FreeBuckets(v []*Node)
}

type defaultAllocator struct{}

func (defaultAllocator) AllocBuckets(n int) []*Node {
	return make([]*Node, n)
}

func (defaultAllocator) FreeBuckets(v []*Node) {
}

type allocatorOption struct {
	allocator Allocator
}

func (op allocatorOption) apply(t *Table) {
	t.allocator = op.allocator
}

// WithAllocator is an option for specifying the Allocator to use for a
// Table.
func WithAllocator(allocator Allocator) Option {
	return allocatorOption{allocator}
}
