package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want int64
	}{
		{"empty", nil, 1},
		{"sequential", []string{"1", "2", "3"}, 4},
		{"gap after delete", []string{"1", "3"}, 4},
		{"unordered", []string{"7", "2", "5"}, 8},
		{"malformed skipped", []string{"abc", "", "2", "1.5"}, 3},
		{"only malformed", []string{"abc", "-"}, 1},
		{"whitespace", []string{" 4 "}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.ids))
		})
	}
}
