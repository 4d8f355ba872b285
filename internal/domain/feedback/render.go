package feedback

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Layout of feedback lines on screen.
const (
	firstLineY  = 500
	lineSpacing = 32
	charWidth   = 5
	leftPadding = 30
)

// Renderer is the on-screen text collaborator that displays feedback.
type Renderer interface {
	DrawString(ctx context.Context, text string, x, y int) error
}

// Line is one feedback line placed on screen.
type Line struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Compose places lines centred on a stage of the given width, one row apart.
func Compose(lines []string, stageWidth int) []Line {
	out := make([]Line, len(lines))
	for i, text := range lines {
		out[i] = Line{
			Text: text,
			X:    stageWidth/2 - len(text)*charWidth - leftPadding,
			Y:    firstLineY + i*lineSpacing,
		}
	}
	return out
}

// Render draws every line, stopping at the first renderer error.
func Render(ctx context.Context, r Renderer, lines []Line) error {
	for _, l := range lines {
		if err := r.DrawString(ctx, l.Text, l.X, l.Y); err != nil {
			return fmt.Errorf("draw %q: %w", l.Text, err)
		}
	}
	return nil
}

// WriterRenderer writes placed lines as "x,y text" to an io.Writer. Useful for
// headless runs and the simulator.
type WriterRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterRenderer creates a renderer over w.
func NewWriterRenderer(w io.Writer) *WriterRenderer {
	return &WriterRenderer{w: w}
}

// DrawString implements Renderer.
func (r *WriterRenderer) DrawString(_ context.Context, text string, x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintf(r.w, "%d,%d %s\n", x, y, text)
	return err
}
