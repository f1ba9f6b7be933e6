package io

// KeyEvent is a single pad key transition.
type KeyEvent struct {
	Key  int
	Down bool
}

// NullRenderer counts frames and discards them, for headless runs.
type NullRenderer struct {
	Frames int
}

func (nr *NullRenderer) Render(display *Display) error {
	nr.Frames++

	return nil
}

// NullInput replays a queue of key events, draining the queue per poll.
type NullInput struct {
	Queue []KeyEvent
}

func (ni *NullInput) Poll(press func(key int, down bool) error) (err error) {
	for _, ev := range ni.Queue {
		err = press(ev.Key, ev.Down)
		if err != nil {
			return
		}
	}
	ni.Queue = ni.Queue[:0]

	return
}

// NullBeeper records the most recent tone state.
type NullBeeper struct {
	On    bool
	Edges int // rising edges seen
}

func (nb *NullBeeper) Beep(on bool) error {
	if on && !nb.On {
		nb.Edges++
	}
	nb.On = on

	return nil
}
