// Package textmetrics measures wrapped text with an OpenType face.
//
// The flow-based renderers (HTML and DOCX) have no layout engine of their
// own at render time, so table pagination measures text here with the Go
// Regular font. Faces are created at 72 DPI so one pixel equals one point.
package textmetrics

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultLineHeight is the line advance as a multiple of the font size.
const DefaultLineHeight = 1.2

// Measurer wraps and measures text in a single font. It is safe for
// concurrent use.
type Measurer struct {
	LineHeight float64

	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// New parses an OpenType or TrueType font.
func New(ttf []byte) (*Measurer, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("textmetrics: parsing font: %w", err)
	}
	return &Measurer{
		LineHeight: DefaultLineHeight,
		font:       f,
		faces:      make(map[float64]font.Face),
	}, nil
}

var (
	defaultOnce     sync.Once
	defaultMeasurer *Measurer
)

// Default returns a shared Measurer for the Go Regular font.
func Default() *Measurer {
	defaultOnce.Do(func() {
		m, err := New(goregular.TTF)
		if err != nil {
			// The embedded font is known good.
			panic(err)
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}

// face returns the cached face for size. Callers hold m.mu.
func (m *Measurer) face(size float64) (font.Face, error) {
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("textmetrics: face at %vpt: %w", size, err)
	}
	m.faces[size] = f
	return f, nil
}

// Width returns the advance width of a single line of text in points.
func (m *Measurer) Width(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(size)
	if err != nil {
		return 0
	}
	return width(f, text)
}

func width(f font.Face, s string) float64 {
	return float64(font.MeasureString(f, s)) / 64
}

// Lines breaks text into lines no wider than maxWidth. Explicit newlines are
// kept; words longer than a line are broken between characters.
func (m *Measurer) Lines(text string, maxWidth, size float64) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return strings.Split(text, "\n")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(size)
	if err != nil {
		return strings.Split(text, "\n")
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" || maxWidth <= 0 || width(f, para) <= maxWidth {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrap(f, para, maxWidth)...)
	}
	return lines
}

// Height returns the height of text wrapped to maxWidth. Empty text has no
// height.
func (m *Measurer) Height(text string, maxWidth, size float64) float64 {
	n := len(m.Lines(text, maxWidth, size))
	lh := m.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return float64(n) * size * lh
}

func wrap(f font.Face, line string, maxWidth float64) []string {
	var (
		out  []string
		cur  strings.Builder
		curW float64
	)
	flush := func() {
		out = append(out, strings.TrimRightFunc(cur.String(), unicode.IsSpace))
		cur.Reset()
		curW = 0
	}

	for _, tok := range tokens(line) {
		w := width(f, tok)
		isSpace := strings.TrimSpace(tok) == ""

		if isSpace && cur.Len() == 0 {
			continue
		}
		if w > maxWidth && !isSpace {
			if cur.Len() > 0 {
				flush()
			}
			parts := breakToken(f, tok, maxWidth)
			out = append(out, parts[:len(parts)-1]...)
			last := parts[len(parts)-1]
			cur.WriteString(last)
			curW = width(f, last)
			continue
		}
		if curW+w > maxWidth && cur.Len() > 0 {
			flush()
			if isSpace {
				continue
			}
		}
		cur.WriteString(tok)
		curW += w
	}
	if cur.Len() > 0 {
		flush()
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

// tokens splits s into alternating runs of spaces and non-spaces.
func tokens(s string) []string {
	var out []string
	start := 0
	prevSpace := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i > start && sp != prevSpace {
			out = append(out, s[start:i])
			start = i
		}
		prevSpace = sp
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func breakToken(f font.Face, tok string, maxWidth float64) []string {
	var (
		parts []string
		cur   strings.Builder
		w     float64
	)
	for _, r := range tok {
		cw := width(f, string(r))
		if w+cw > maxWidth && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			w = 0
		}
		cur.WriteRune(r)
		w += cw
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
