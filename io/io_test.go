package io

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/chip8"
)

func TestPadLayout(t *testing.T) {
	assert := assert.New(t)

	seen := map[byte]bool{}
	for _, row := range PadLayout {
		for _, key := range row {
			assert.Less(int(key), chip8.KEY_COUNT)
			assert.False(seen[key], "key %x repeats", key)
			seen[key] = true
		}
	}
	assert.Equal(chip8.KEY_COUNT, len(seen))
}

func TestHostKeys(t *testing.T) {
	assert := assert.New(t)

	// the keyboard block mirrors the pad layout shape
	rows := [4]string{"1234", "qwer", "asdf", "zxcv"}
	for r, row := range rows {
		for c := range len(row) {
			assert.Equal(int(PadLayout[r][c]), HostKeys[row[c]])
		}
	}
	assert.Equal(chip8.KEY_COUNT, len(HostKeys))
}

func TestNullInput(t *testing.T) {
	assert := assert.New(t)

	ni := &NullInput{
		Queue: []KeyEvent{{0x1, true}, {0x1, false}, {0xf, true}},
	}

	var got []KeyEvent
	err := ni.Poll(func(key int, down bool) error {
		got = append(got, KeyEvent{key, down})
		return nil
	})
	assert.NoError(err)
	assert.Equal([]KeyEvent{{0x1, true}, {0x1, false}, {0xf, true}}, got)

	// the queue drains after a poll
	got = nil
	assert.NoError(ni.Poll(func(key int, down bool) error {
		got = append(got, KeyEvent{key, down})
		return nil
	}))
	assert.Empty(got)
}

func TestNullRenderer(t *testing.T) {
	assert := assert.New(t)

	nr := &NullRenderer{}
	display := &Display{}
	assert.NoError(nr.Render(display))
	assert.NoError(nr.Render(display))
	assert.Equal(2, nr.Frames)
}

func TestNullBeeper(t *testing.T) {
	assert := assert.New(t)

	nb := &NullBeeper{}
	assert.NoError(nb.Beep(true))
	assert.NoError(nb.Beep(true))
	assert.NoError(nb.Beep(false))
	assert.NoError(nb.Beep(true))

	assert.True(nb.On)
	assert.Equal(2, nb.Edges)
}
