package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		items     []int
		size      int
		groups    [][]int
		remainder []int
	}{
		{"empty", nil, 3, nil, nil},
		{"exact triples", []int{1, 2, 3, 4, 5, 6}, 3, [][]int{{1, 2, 3}, {4, 5, 6}}, nil},
		{"trailing cells", []int{1, 2, 3, 4}, 3, [][]int{{1, 2, 3}}, []int{4}},
		{"shorter than group", []int{1}, 2, nil, []int{1}},
		{"pairs", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}, nil},
		{"invalid size", []int{1, 2}, 0, nil, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, rest := Chunk(tt.items, tt.size)
			assert.Equal(t, tt.groups, groups)
			assert.Equal(t, tt.remainder, rest)
		})
	}
}

func TestChunk_GroupsDoNotAlias(t *testing.T) {
	items := []int{1, 2, 3, 4}
	groups, _ := Chunk(items, 2)

	groups[0] = append(groups[0], 99)
	assert.Equal(t, []int{1, 2, 3, 4}, items)
}
