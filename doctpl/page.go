package doctpl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Page modes.
const (
	ModePaged = "paged"
	ModeRoll  = "roll"
)

// Orientations.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// SizeCustom selects the explicit width and height of PageSettings.
const SizeCustom = "custom"

// PageSettings describes the physical page. Width and Height are only
// authoritative when Size is "custom"; otherwise they are derived from the
// preset table and kept for display.
type PageSettings struct {
	Mode         string  `json:"mode,omitempty"`
	Size         string  `json:"size,omitempty"`
	Orientation  string  `json:"orientation,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	MarginTop    float64 `json:"marginTop,omitempty"`
	MarginBottom float64 `json:"marginBottom,omitempty"`
	MarginLeft   float64 `json:"marginLeft,omitempty"`
	MarginRight  float64 `json:"marginRight,omitempty"`
}

// PageSize is a width/height pair in points, portrait orientation.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Presets are the named page sizes, keyed by lower-case name.
var Presets = map[string]PageSize{
	"a3":     {842, 1191},
	"a4":     {595, 842},
	"a5":     {420, 595},
	"letter": {612, 792},
	"legal":  {612, 1008},
}

// PresetSize returns the dimensions of a named size in the given orientation.
func PresetSize(size, orientation string) (w, h float64, ok bool) {
	p, ok := Presets[strings.ToLower(size)]
	if !ok {
		return 0, 0, false
	}
	if strings.EqualFold(orientation, OrientationLandscape) {
		return p.Height, p.Width, true
	}
	return p.Width, p.Height, true
}

// IsRoll reports whether the page grows with its content.
func (s PageSettings) IsRoll() bool {
	return strings.EqualFold(s.Mode, ModeRoll)
}

// Dimensions returns the effective page size. Named sizes come from Presets;
// custom or unrecognised sizes use Width and Height, falling back to A4 for
// missing values.
func (s PageSettings) Dimensions() (w, h float64) {
	if !strings.EqualFold(s.Size, SizeCustom) {
		if pw, ph, ok := PresetSize(s.Size, s.Orientation); ok {
			return pw, ph
		}
	}
	w, h = s.Width, s.Height
	dw, dh, _ := PresetSize("a4", s.Orientation)
	if w <= 0 {
		w = dw
	}
	if h <= 0 {
		h = dh
	}
	return w, h
}

// Normalized returns a copy whose Width and Height agree with the preset
// table, as the designer keeps them.
func (s PageSettings) Normalized() PageSettings {
	s.Width, s.Height = s.Dimensions()
	if s.Mode == "" {
		s.Mode = ModePaged
	}
	if s.Orientation == "" {
		s.Orientation = OrientationPortrait
	}
	return s
}

// Parse decodes a template from its JSON form.
func Parse(b []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("doctpl: parsing template: %w", err)
	}
	return &t, nil
}
