package ui

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressHandle(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManagerTo(&buf)
	h := pm.Register("xkcd")

	h.Update(0, 3, 0)
	h.Update(2, 3, 2048)
	assert.Equal(t, int64(3), atomic.LoadInt64(&h.total))
	assert.Equal(t, int64(2048), atomic.LoadInt64(&h.bytes))

	h.MarkDone()
	assert.True(t, h.final.Load())

	// updates after completion are ignored
	h.Update(1, 5, 1)
	assert.Equal(t, int64(3), atomic.LoadInt64(&h.total))

	pm.Close()
}
