package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/jafranjemal/aavanamkit/asset"
)

const (
	relTypeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeSettings = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"

	ctDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctSettings = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"

	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// media collects the pictures of a document, each embedded once.
type media struct {
	byKey map[string]string
	files []mediaFile
}

type mediaFile struct {
	relID string
	name  string
	data  []byte
}

func newMedia() *media {
	return &media{byKey: make(map[string]string)}
}

// add registers a under key and returns its relationship ID.
func (m *media) add(key string, a *asset.Asset) string {
	if id, ok := m.byKey[key]; ok {
		return id
	}
	n := len(m.files) + 1
	id := fmt.Sprintf("rIdImage%d", n)
	m.files = append(m.files, mediaFile{
		relID: id,
		name:  fmt.Sprintf("image%d.%s", n, a.Ext()),
		data:  a.Data,
	})
	m.byKey[key] = id
	return id
}

func writePackage(w io.Writer, doc *document, m *media, showBackground bool) error {
	zw := zip.NewWriter(w)

	types := contentTypes{
		Namespace: nsContentTypes,
		Defaults: []contentDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
			{Extension: "png", ContentType: asset.TypePNG},
			{Extension: "jpeg", ContentType: asset.TypeJPEG},
		},
		Overrides: []contentOverride{
			{PartName: "/word/document.xml", ContentType: ctDocument},
			{PartName: "/word/settings.xml", ContentType: ctSettings},
		},
	}
	if err := writeXML(zw, "[Content_Types].xml", types); err != nil {
		return err
	}

	root := relationships{
		Namespace: nsRelationships,
		Rels:      []relationship{{ID: "rId1", Type: relTypeDocument, Target: "word/document.xml"}},
	}
	if err := writeXML(zw, "_rels/.rels", root); err != nil {
		return err
	}

	if err := writeXML(zw, "word/document.xml", doc); err != nil {
		return err
	}

	docRels := relationships{
		Namespace: nsRelationships,
		Rels:      []relationship{{ID: "rIdSettings", Type: relTypeSettings, Target: "settings.xml"}},
	}
	for _, f := range m.files {
		docRels.Rels = append(docRels.Rels, relationship{ID: f.relID, Type: relTypeImage, Target: "media/" + f.name})
	}
	if err := writeXML(zw, "word/_rels/document.xml.rels", docRels); err != nil {
		return err
	}

	set := settings{
		W: nsW,
		Compat: compat{Setting: compatSetting{
			Name: "compatibilityMode",
			URI:  "http://schemas.microsoft.com/office/word",
			Val:  "15",
		}},
	}
	if showBackground {
		set.DisplayBgShape = &empty{}
	}
	if err := writeXML(zw, "word/settings.xml", set); err != nil {
		return err
	}

	for _, f := range m.files {
		fw, err := zw.Create("word/media/" + f.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

func writeXML(zw *zip.Writer, name string, v any) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.WriteString(fw, xmlHeader); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := xml.NewEncoder(fw).Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return nil
}
