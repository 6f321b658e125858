package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, false)

	log.Debugf("hidden %d\n", 1)
	log.Infof("shown %d\n", 2)
	log.Errorf("failed: %s\n", "boom")

	assert.Equal(t, "[INFO] shown 2\n[ERROR] failed: boom\n", buf.String())

	buf.Reset()
	log.Debug = true
	log.Debugf("visible\n")
	log.Warnf("careful\n")
	assert.Equal(t, "[DEBUG] visible\n[WARN] careful\n", buf.String())
}
