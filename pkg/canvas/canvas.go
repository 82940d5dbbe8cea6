// Package canvas provides the drawing surface renderers append marks to.
//
// A [Surface] only knows two primitives, rectangles and text. Renderers take
// the surface as a parameter and never hold on to it, so the caller decides
// where the drawing ends up. [SVG] is the surface used everywhere in boardviz:
// it records marks in order and serialises them as an SVG document.
package canvas

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
)

// Surface is a mutable drawing surface.
type Surface interface {
	// Clear removes every mark drawn so far.
	Clear()
	// Rect appends a rectangle.
	Rect(r Rect)
	// Text appends a text node.
	Text(t Text)
}

// Rect is a rectangle mark. Y is the top edge.
type Rect struct {
	X, Y, W, H  float64
	Stroke      string
	StrokeWidth float64
	Fill        string
}

// Text is a text mark anchored at its baseline start.
type Text struct {
	X, Y    float64
	Fill    string
	Content string
}

// Kind distinguishes recorded marks.
type Kind int

const (
	KindRect Kind = iota
	KindText
)

// Mark is one recorded drawing call. Exactly one of Rect and Text is
// meaningful, selected by Kind.
type Mark struct {
	Kind Kind
	Rect Rect
	Text Text
}

const (
	defaultMargin = 5.0
	// textAdvance approximates the width of one glyph for bounds computation.
	textAdvance = 7.0
	textAscent  = 12.0
)

// Option configures an SVG surface.
type Option func(*SVG)

// WithSize fixes the document size instead of deriving it from the marks.
func WithSize(w, h float64) Option {
	return func(s *SVG) { s.width, s.height = w, h }
}

// WithMargin sets the padding added around derived bounds (default 5).
func WithMargin(m float64) Option {
	return func(s *SVG) { s.margin = m }
}

// SVG is an in-memory Surface that serialises to an SVG document.
// It is not safe for concurrent use.
type SVG struct {
	marks         []Mark
	width, height float64
	margin        float64
}

// NewSVG creates an empty SVG surface.
func NewSVG(opts ...Option) *SVG {
	s := &SVG{margin: defaultMargin}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clear removes all marks.
func (s *SVG) Clear() { s.marks = s.marks[:0] }

// Rect records a rectangle.
func (s *SVG) Rect(r Rect) { s.marks = append(s.marks, Mark{Kind: KindRect, Rect: r}) }

// Text records a text node.
func (s *SVG) Text(t Text) { s.marks = append(s.marks, Mark{Kind: KindText, Text: t}) }

// Marks returns a copy of the recorded marks in drawing order.
func (s *SVG) Marks() []Mark {
	out := make([]Mark, len(s.marks))
	copy(out, s.marks)
	return out
}

// Len returns the number of recorded marks.
func (s *SVG) Len() int { return len(s.marks) }

// Count returns the number of recorded marks of kind k.
func (s *SVG) Count(k Kind) int {
	n := 0
	for _, m := range s.marks {
		if m.Kind == k {
			n++
		}
	}
	return n
}

// Size returns the document width and height.
func (s *SVG) Size() (w, h float64) {
	if s.width > 0 && s.height > 0 {
		return s.width, s.height
	}
	for _, m := range s.marks {
		switch m.Kind {
		case KindRect:
			w = math.Max(w, m.Rect.X+m.Rect.W+m.Rect.StrokeWidth/2)
			h = math.Max(h, m.Rect.Y+m.Rect.H+m.Rect.StrokeWidth/2)
		case KindText:
			w = math.Max(w, m.Text.X+textAdvance*float64(len(m.Text.Content)))
			h = math.Max(h, m.Text.Y+textAscent/3)
		}
	}
	if len(s.marks) == 0 {
		return 0, 0
	}
	return w + s.margin, h + s.margin
}

// Bytes serialises the surface as a standalone SVG document.
func (s *SVG) Bytes() []byte {
	w, h := s.Size()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(w), num(h), num(w), num(h))
	for _, m := range s.marks {
		switch m.Kind {
		case KindRect:
			writeRect(&buf, m.Rect)
		case KindText:
			writeText(&buf, m.Text)
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeRect(buf *bytes.Buffer, r Rect) {
	fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s"`, num(r.X), num(r.Y), num(r.W), num(r.H))
	if r.StrokeWidth > 0 {
		fmt.Fprintf(buf, ` stroke-width="%s"`, num(r.StrokeWidth))
	}
	if r.Stroke != "" {
		fmt.Fprintf(buf, ` stroke="%s"`, attr(r.Stroke))
	}
	if r.Fill != "" {
		fmt.Fprintf(buf, ` fill="%s"`, attr(r.Fill))
	}
	buf.WriteString("/>\n")
}

func writeText(buf *bytes.Buffer, t Text) {
	fmt.Fprintf(buf, `  <text x="%s" y="%s"`, num(t.X), num(t.Y))
	if t.Fill != "" {
		fmt.Fprintf(buf, ` style="fill: %s"`, attr(t.Fill))
	}
	buf.WriteString(">")
	_ = xml.EscapeText(buf, []byte(t.Content))
	buf.WriteString("</text>\n")
}

// num formats a coordinate with the shortest exact representation.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func attr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
