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
	"testing"

	"github.com/stretchr/testify/require"
)

// chainFrom walks forward from n and returns the payload names in order,
// checking the back links along the way.
func chainFrom(t *testing.T, n *Node) []string {
	var names []string
	var prev *Node
	for ; n != nil; n = n.Next() {
		require.True(t, n.Prev() == prev, "broken back link at %q", n.FullName)
		names = append(names, n.FullName)
		prev = n
	}
	return names
}

func named(name string) *Node {
	return NewRecordNode(Record{FullName: name})
}

func TestNewNode(t *testing.T) {
	n := NewNode()
	require.NotNil(t, n)
	require.True(t, n.IsHead())
	require.True(t, n.IsTail())
	require.False(t, n.Owned())
	require.EqualValues(t, 0, n.Key())
	require.EqualValues(t, 0, n.HashCode())
	require.Equal(t, Record{}, n.Record)

	r := Record{
		FullName: "Ada Lovelace",
		Address:  "12 St James's Square",
		City:     "London",
		State:    "LDN",
		Zip:      "SW1Y 4JH",
	}
	n = NewRecordNode(r)
	require.Equal(t, r, n.Record)
	require.True(t, n.IsHead() && n.IsTail())
}

func TestNodeDestroy(t *testing.T) {
	n := named("a")
	n.City = "Paris"
	other := named("b")
	n.InsertAfter(other)

	m := n
	n = n.Destroy()
	require.Nil(t, n)
	require.Equal(t, Node{}, *m)

	// Destroying nil is a noop.
	n = n.Destroy()
	require.Nil(t, n)
}

func TestNodeInsertAfter(t *testing.T) {
	a, b, c := named("a"), named("b"), named("c")

	a.InsertAfter(c)
	require.Equal(t, []string{"a", "c"}, chainFrom(t, a))
	require.True(t, a.IsHead())
	require.False(t, a.IsTail())
	require.True(t, c.IsTail())

	// Splice into the middle.
	a.InsertAfter(b)
	require.Equal(t, []string{"a", "b", "c"}, chainFrom(t, a))
	require.True(t, c.Prev() == b)

	// Nil arguments are ignored.
	a.InsertAfter(nil)
	var nilNode *Node
	nilNode.InsertAfter(a)
	require.Equal(t, []string{"a", "b", "c"}, chainFrom(t, a))
}

func TestNodeInsertBefore(t *testing.T) {
	a, b, c := named("a"), named("b"), named("c")

	c.InsertBefore(a)
	require.Equal(t, []string{"a", "c"}, chainFrom(t, a))
	require.True(t, a.IsHead())
	require.True(t, c.IsTail())

	c.InsertBefore(b)
	require.Equal(t, []string{"a", "b", "c"}, chainFrom(t, a))
	require.True(t, a.Next() == b)

	c.InsertBefore(nil)
	var nilNode *Node
	nilNode.InsertBefore(c)
	require.Equal(t, []string{"a", "b", "c"}, chainFrom(t, a))
}

func TestNodeUnlink(t *testing.T) {
	testCases := []struct {
		remove   string
		head     string
		expected []string
	}{
		{remove: "a", head: "b", expected: []string{"b", "c"}},
		{remove: "b", head: "a", expected: []string{"a", "c"}},
		{remove: "c", head: "a", expected: []string{"a", "b"}},
	}
	for _, c := range testCases {
		t.Run(c.remove, func(t *testing.T) {
			nodes := map[string]*Node{"a": named("a"), "b": named("b"), "c": named("c")}
			nodes["a"].InsertAfter(nodes["b"])
			nodes["b"].InsertAfter(nodes["c"])

			n := nodes[c.remove]
			n.Unlink()
			require.True(t, n.IsHead())
			require.True(t, n.IsTail())
			require.Equal(t, c.remove, n.FullName)

			head := nodes[c.head]
			require.True(t, head.IsHead())
			require.Equal(t, c.expected, chainFrom(t, head))
		})
	}

	// Unlinking a lone node only clears its (already empty) links.
	n := named("solo")
	n.Unlink()
	require.True(t, n.IsHead() && n.IsTail())

	var nilNode *Node
	require.Panics(t, func() { nilNode.Unlink() })
}
