package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"only blanks", "\n  \n\t\n", nil},
		{"blank line dropped", "x\n\ny", []string{"x", "y"}},
		{"trimmed", "  a  \r\n b\t", []string{"a", "b"}},
		{"single", "t1", []string{"t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.in))
		})
	}
}

func TestSplitLines_CountsNonEmptyLines(t *testing.T) {
	for k := 0; k <= 4; k++ {
		for m := 0; m <= 4; m++ {
			var lines []string
			for i := 0; i < k; i++ {
				lines = append(lines, " item ")
			}
			for i := 0; i < m; i++ {
				lines = append(lines, strings.Repeat(" ", i))
			}

			assert.Len(t, splitLines(strings.Join(lines, "\n")), k, "k=%d m=%d", k, m)
		}
	}
}

func TestJoinPrefixed(t *testing.T) {
	assert.Equal(t, "・x\n・y", joinPrefixed(rulePrefix, []string{"x", "y"}))
	assert.Equal(t, "○ t1", joinPrefixed(todoPrefix, []string{"t1"}))
	assert.Equal(t, "", joinPrefixed(todoPrefix, nil))
}
