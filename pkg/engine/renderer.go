package engine

import (
	"fmt"

	"resonance/internal/logger"
)

// Pass is one step of an effect composer
type Pass interface {
	// Render reads from read and writes to write, or to the window when toScreen is set
	Render(r *OpenGLRenderer, write, read *RenderTarget, toScreen bool) error

	// NeedsSwap reports whether the composer swaps its buffers after this pass
	NeedsSwap() bool

	// SetSize resizes any targets the pass owns
	SetSize(width, height int) error

	// Delete releases resources
	Delete()
}

// Composer chains passes over a pair of ping-pong render targets
type Composer struct {
	log      *logger.Logger
	renderer *OpenGLRenderer
	passes   []Pass

	read  *RenderTarget
	write *RenderTarget

	// RenderToScreen sends the last pass to the window instead of a target
	RenderToScreen bool
}

// NewComposer creates a composer with two buffers of the given size
func NewComposer(r *OpenGLRenderer, width, height int, log *logger.Logger) (*Composer, error) {
	read, err := NewRenderTarget(width, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create read buffer: %w", err)
	}
	write, err := NewRenderTarget(width, height, true)
	if err != nil {
		read.Delete()
		return nil, fmt.Errorf("failed to create write buffer: %w", err)
	}

	return &Composer{
		log:            log,
		renderer:       r,
		read:           read,
		write:          write,
		RenderToScreen: true,
	}, nil
}

// AddPass appends a pass
func (c *Composer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
}

// ReadBuffer holds the result of the last pass that did not go to the window
func (c *Composer) ReadBuffer() *RenderTarget { return c.read }

// Render runs every pass in order
func (c *Composer) Render() error {
	for i, p := range c.passes {
		toScreen := c.RenderToScreen && i == len(c.passes)-1
		if err := p.Render(c.renderer, c.write, c.read, toScreen); err != nil {
			return fmt.Errorf("pass %d (%T): %w", i, p, err)
		}
		if p.NeedsSwap() {
			c.read, c.write = c.write, c.read
		}
	}
	return nil
}

// SetSize resizes the buffers and every pass
func (c *Composer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := c.read.SetSize(width, height); err != nil {
		c.log.Errorf("Failed to resize read buffer: %v", err)
	}
	if err := c.write.SetSize(width, height); err != nil {
		c.log.Errorf("Failed to resize write buffer: %v", err)
	}
	for _, p := range c.passes {
		if err := p.SetSize(width, height); err != nil {
			c.log.Errorf("Failed to resize %T: %v", p, err)
		}
	}
}

// Delete releases the buffers and passes
func (c *Composer) Delete() {
	for _, p := range c.passes {
		p.Delete()
	}
	c.read.Delete()
	c.write.Delete()
}
