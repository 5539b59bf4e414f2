package mcp

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
)

// Resource URIs.
const (
	PagePresetsURI = "aavanam://page-presets"
	FormatsURI     = "aavanam://formats"
)

// RegisterDefaultResources adds the reference resources to the server.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         PagePresetsURI,
		Name:        "Page Size Presets",
		Description: "Named page sizes accepted in pageSettings.size, in points, for both orientations",
		MIMEType:    "application/json",
		Handler:     handlePagePresetsResource,
	})

	s.AddResource(Resource{
		URI:         FormatsURI,
		Name:        "Output Formats",
		Description: "Output types accepted by generate_document and their content types",
		MIMEType:    "application/json",
		Handler:     handleFormatsResource,
	})
}

type presetInfo struct {
	Name      string          `json:"name"`
	Portrait  doctpl.PageSize `json:"portrait"`
	Landscape doctpl.PageSize `json:"landscape"`
}

func handlePagePresetsResource(uri string) ([]ResourceContent, error) {
	presets := make([]presetInfo, 0, len(doctpl.Presets))
	for name := range doctpl.Presets {
		pw, ph, _ := doctpl.PresetSize(name, doctpl.OrientationPortrait)
		lw, lh, _ := doctpl.PresetSize(name, doctpl.OrientationLandscape)
		presets = append(presets, presetInfo{
			Name:      name,
			Portrait:  doctpl.PageSize{Width: pw, Height: ph},
			Landscape: doctpl.PageSize{Width: lw, Height: lh},
		})
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return jsonContent(uri, presets)
}

func handleFormatsResource(uri string) ([]ResourceContent, error) {
	type formatInfo struct {
		OutputType  string `json:"outputType"`
		ContentType string `json:"contentType"`
	}
	var formats []formatInfo
	for _, f := range render.Formats() {
		formats = append(formats, formatInfo{OutputType: string(f), ContentType: f.ContentType()})
	}
	return jsonContent(uri, formats)
}

func jsonContent(uri string, v interface{}) ([]ResourceContent, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}, nil
}
