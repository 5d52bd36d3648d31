package log

import (
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/stretchr/testify/assert"
)

func TestHeight(t *testing.T) {
	assert.Equal(t, 4, Height(12))
	assert.Equal(t, 10, Height(30))
	assert.Equal(t, 15, Height(100))
}

func TestRenderNotReady(t *testing.T) {
	vp := viewport.New(40, 5)
	assert.Contains(t, Render(60, false, "sp", vp), "initializing")
	vp.SetContent("12:00:00 INFO hello")
	assert.Contains(t, Render(60, true, "sp", vp), "hello")
}
