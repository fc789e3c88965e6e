package tui

import "github.com/scrubline/scrubline/scrub"

// pointerBus routes every mouse event to the holder of a capture, wherever the
// pointer is, until it is released.
type pointerBus struct {
	handlers   scrub.Handlers
	generation int
	held       bool
}

func (p *pointerBus) Capture(h scrub.Handlers) func() {
	p.generation++
	p.handlers = h
	p.held = true

	generation := p.generation
	return func() {
		if p.generation == generation {
			p.held = false
			p.handlers = scrub.Handlers{}
		}
	}
}

func (p *pointerBus) captured() bool {
	return p.held
}

func (p *pointerBus) move(x float64) {
	if p.held && p.handlers.Move != nil {
		p.handlers.Move(x)
	}
}

func (p *pointerBus) up(x float64) {
	if p.held && p.handlers.Up != nil {
		p.handlers.Up(x)
	}
}
