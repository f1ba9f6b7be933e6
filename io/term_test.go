package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermRender(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tm := &Term{Out: out}

	display := &Display{}
	display[0][0] = true
	display[31][63] = true

	assert.NoError(tm.Render(display))

	text := out.String()
	assert.True(strings.HasPrefix(text, "\033[H"))
	assert.Equal(32, strings.Count(text, "\r\n"))
	assert.Equal(2, strings.Count(text, "██"))
}

func TestTermBeep(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tm := &Term{Out: out}

	assert.NoError(tm.Beep(true))
	assert.NoError(tm.Beep(true))
	assert.NoError(tm.Beep(false))
	assert.NoError(tm.Beep(true))

	// only the rising edges ring the bell
	assert.Equal("\a\a", out.String())
}
