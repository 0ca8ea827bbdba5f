package lineage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visitRecord struct {
	name   string
	depth  int
	isLast bool
	flags  []bool
	path   string
}

func collect(root *Node) []visitRecord {
	var out []visitRecord
	Walk(root, func(v Visit) bool {
		out = append(out, visitRecord{
			name:   v.Node.ShortName(),
			depth:  v.Depth,
			isLast: v.IsLast,
			flags:  append([]bool(nil), v.AncestorsLast...),
			path:   v.Path.String(),
		})
		return true
	})
	return out
}

func TestWalk_PreOrder(t *testing.T) {
	got := collect(deepTree().Root)

	want := []visitRecord{
		{name: "V", depth: 0, isLast: true, flags: nil, path: ""},
		{name: "A", depth: 1, isLast: false, flags: nil, path: "0"},
		{name: "T1", depth: 2, isLast: false, flags: []bool{false}, path: "0/0"},
		{name: "B", depth: 2, isLast: true, flags: []bool{false}, path: "0/1"},
		{name: "T2", depth: 3, isLast: true, flags: []bool{false, true}, path: "0/1/0"},
		{name: "T3", depth: 1, isLast: true, flags: nil, path: "1"},
	}
	assert.Equal(t, want, got)
}

func TestWalk_StopsAtTerminalNodes(t *testing.T) {
	root := view("R",
		table("T", view("HIDDEN_UNDER_TABLE")),
		loop("L", table("HIDDEN_UNDER_LOOP")),
		view("EMPTY"),
	)

	var names []string
	Walk(root, func(v Visit) bool {
		names = append(names, v.Node.Name)
		return true
	})

	assert.Equal(t, []string{"R", "T", "L", "EMPTY"}, names)
}

func TestWalk_FollowsUnknownKinds(t *testing.T) {
	root := view("R", unknown("U", table("T")))

	var names []string
	Walk(root, func(v Visit) bool {
		names = append(names, v.Node.Name)
		return true
	})

	assert.Equal(t, []string{"R", "U", "T"}, names)
}

func TestWalk_Prune(t *testing.T) {
	var names []string
	Walk(deepTree().Root, func(v Visit) bool {
		names = append(names, v.Node.ShortName())
		return v.Node.ShortName() != "A"
	})

	assert.Equal(t, []string{"V", "A", "T3"}, names)
}

func TestWalk_NilRoot(t *testing.T) {
	called := false
	Walk(nil, func(Visit) bool {
		called = true
		return true
	})
	assert.False(t, called)
}

func TestWalk_ConcurrentWalksAgree(t *testing.T) {
	root := deepTree().Root
	want := collect(root)

	var wg sync.WaitGroup
	results := make([][]visitRecord, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = collect(root)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestPrefixAndConnector(t *testing.T) {
	assert.Equal(t, "", Prefix(nil))
	assert.Equal(t, "│       │   ", Prefix([]bool{false, true, false}))
	assert.Equal(t, "└── ", Connector(true))
	assert.Equal(t, "├── ", Connector(false))
}
