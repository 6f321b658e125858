package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		rng      string
		list     string
		expected []int
	}{
		{"args only", []string{"589", "1"}, "", "", []int{589, 1}},
		{"range", nil, "5-8", "", []int{5, 6, 7, 8}},
		{"list", nil, "", "1, 3,,5", []int{1, 3, 5}},
		{"dedup keeps first position", []string{"6"}, "5-7", "7,1", []int{6, 5, 7, 1}},
		{"nothing", nil, "", "", nil},
		{"non positive passed through", []string{"0", "-1"}, "", "", []int{0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args, tt.rng, tt.list)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		rng  string
		list string
	}{
		{"bad arg", []string{"latest"}, "", ""},
		{"bad range", nil, "5", ""},
		{"reversed range", nil, "9-3", ""},
		{"range words", nil, "a-b", ""},
		{"huge range", nil, "1-100000", ""},
		{"range to max int", nil, "0-9223372036854775807", ""},
		{"bad list", nil, "", "1,x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, tt.rng, tt.list)
			assert.Error(t, err)
		})
	}
}

func TestRangeBounds(t *testing.T) {
	nums, err := Range("1-500")
	require.NoError(t, err)
	assert.Len(t, nums, MaxRange)

	_, err = Range("1-501")
	assert.Error(t, err)

	require.NotPanics(t, func() {
		_, err = Range("0-9223372036854775807")
	})
	assert.Error(t, err)

	require.NotPanics(t, func() {
		_, err = Parse(nil, "0-9223372036854775807", "")
	})
	assert.Error(t, err)
}
