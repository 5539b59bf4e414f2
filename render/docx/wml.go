package docx

import "encoding/xml"

// WordprocessingML is written with prefixed local names; the namespaces are
// declared once on the document element.

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

type document struct {
	XMLName    xml.Name    `xml:"w:document"`
	W          string      `xml:"xmlns:w,attr"`
	R          string      `xml:"xmlns:r,attr"`
	WP         string      `xml:"xmlns:wp,attr"`
	A          string      `xml:"xmlns:a,attr"`
	Pic        string      `xml:"xmlns:pic,attr"`
	Background *background `xml:"w:background,omitempty"`
	Body       body        `xml:"w:body"`
}

type background struct {
	Color string `xml:"w:color,attr"`
}

// body keeps paragraphs and tables in document order.
type body struct {
	Blocks  []any
	Section section
}

func (b body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, blk := range b.Blocks {
		if err := e.Encode(blk); err != nil {
			return err
		}
	}
	if err := e.EncodeElement(b.Section, xml.StartElement{Name: xml.Name{Local: "w:sectPr"}}); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type section struct {
	Size   pageSize   `xml:"w:pgSz"`
	Margin pageMargin `xml:"w:pgMar"`
}

type pageSize struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type pageMargin struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

type paragraph struct {
	XMLName xml.Name `xml:"w:p"`
	Props   *pPr     `xml:"w:pPr,omitempty"`
	Runs    []run    `xml:"w:r"`
}

type pPr struct {
	Frame   *framePr `xml:"w:framePr,omitempty"`
	Spacing *spacing `xml:"w:spacing,omitempty"`
	Jc      *val     `xml:"w:jc,omitempty"`
}

type framePr struct {
	W       int    `xml:"w:w,attr"`
	H       int    `xml:"w:h,attr,omitempty"`
	HRule   string `xml:"w:hRule,attr,omitempty"`
	X       int    `xml:"w:x,attr"`
	Y       int    `xml:"w:y,attr"`
	HAnchor string `xml:"w:hAnchor,attr"`
	VAnchor string `xml:"w:vAnchor,attr"`
	Wrap    string `xml:"w:wrap,attr"`
}

type spacing struct {
	Before   int    `xml:"w:before,attr"`
	After    int    `xml:"w:after,attr"`
	Line     int    `xml:"w:line,attr"`
	LineRule string `xml:"w:lineRule,attr"`
}

type val struct {
	Val string `xml:"w:val,attr"`
}

type run struct {
	Props   *rPr     `xml:"w:rPr,omitempty"`
	Break   *brk     `xml:"w:br,omitempty"`
	Text    *text    `xml:"w:t,omitempty"`
	Drawing *drawing `xml:"w:drawing,omitempty"`
}

type rPr struct {
	Fonts  *fonts `xml:"w:rFonts,omitempty"`
	Bold   *empty `xml:"w:b,omitempty"`
	Italic *empty `xml:"w:i,omitempty"`
	Color  *val   `xml:"w:color,omitempty"`
	Size   *val   `xml:"w:sz,omitempty"`
	SizeCs *val   `xml:"w:szCs,omitempty"`
}

type fonts struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
	CS    string `xml:"w:cs,attr"`
}

type empty struct{}

type brk struct {
	Type string `xml:"w:type,attr,omitempty"`
}

type text struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

type tbl struct {
	XMLName xml.Name `xml:"w:tbl"`
	Props   tblPr    `xml:"w:tblPr"`
	Grid    []width  `xml:"w:tblGrid>w:gridCol"`
	Rows    []row    `xml:"w:tr"`
}

type tblPr struct {
	Position tblpPr  `xml:"w:tblpPr"`
	Overlap  val     `xml:"w:tblOverlap"`
	Width    width   `xml:"w:tblW"`
	Layout   typ     `xml:"w:tblLayout"`
	Margins  cellMar `xml:"w:tblCellMar"`
}

type tblpPr struct {
	LeftFromText   int    `xml:"w:leftFromText,attr"`
	RightFromText  int    `xml:"w:rightFromText,attr"`
	TopFromText    int    `xml:"w:topFromText,attr"`
	BottomFromText int    `xml:"w:bottomFromText,attr"`
	VertAnchor     string `xml:"w:vertAnchor,attr"`
	HorzAnchor     string `xml:"w:horzAnchor,attr"`
	X              int    `xml:"w:tblpX,attr"`
	Y              int    `xml:"w:tblpY,attr"`
}

type width struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr,omitempty"`
}

type typ struct {
	Type string `xml:"w:type,attr"`
}

type cellMar struct {
	Top    width `xml:"w:top"`
	Left   width `xml:"w:left"`
	Bottom width `xml:"w:bottom"`
	Right  width `xml:"w:right"`
}

type row struct {
	Props trPr   `xml:"w:trPr"`
	Cells []cell `xml:"w:tc"`
}

type trPr struct {
	Header *empty   `xml:"w:tblHeader,omitempty"`
	Height trHeight `xml:"w:trHeight"`
}

type trHeight struct {
	Val   int    `xml:"w:val,attr"`
	HRule string `xml:"w:hRule,attr"`
}

type cell struct {
	Props tcPr      `xml:"w:tcPr"`
	Paras paragraph `xml:"w:p"`
}

type tcPr struct {
	Width   width `xml:"w:tcW"`
	Shading shd   `xml:"w:shd"`
}

type shd struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr"`
	Fill  string `xml:"w:fill,attr"`
}

// DrawingML picture anchored to the page.

type drawing struct {
	Anchor anchor `xml:"wp:anchor"`
}

type anchor struct {
	DistT          int      `xml:"distT,attr"`
	DistB          int      `xml:"distB,attr"`
	DistL          int      `xml:"distL,attr"`
	DistR          int      `xml:"distR,attr"`
	SimplePos      int      `xml:"simplePos,attr"`
	RelativeHeight int      `xml:"relativeHeight,attr"`
	BehindDoc      int      `xml:"behindDoc,attr"`
	Locked         int      `xml:"locked,attr"`
	LayoutInCell   int      `xml:"layoutInCell,attr"`
	AllowOverlap   int      `xml:"allowOverlap,attr"`
	Simple         point    `xml:"wp:simplePos"`
	PosH           position `xml:"wp:positionH"`
	PosV           position `xml:"wp:positionV"`
	Extent         extent   `xml:"wp:extent"`
	Effect         effect   `xml:"wp:effectExtent"`
	WrapNone       empty    `xml:"wp:wrapNone"`
	DocPr          docPr    `xml:"wp:docPr"`
	FramePr        empty    `xml:"wp:cNvGraphicFramePr"`
	Graphic        graphic  `xml:"a:graphic"`
}

type point struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type position struct {
	RelativeFrom string `xml:"relativeFrom,attr"`
	Offset       int64  `xml:"wp:posOffset"`
}

type extent struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type effect struct {
	L int64 `xml:"l,attr"`
	T int64 `xml:"t,attr"`
	R int64 `xml:"r,attr"`
	B int64 `xml:"b,attr"`
}

type docPr struct {
	ID    int    `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr,omitempty"`
}

type graphic struct {
	Data graphicData `xml:"a:graphicData"`
}

type graphicData struct {
	URI string `xml:"uri,attr"`
	Pic pic    `xml:"pic:pic"`
}

type pic struct {
	NonVisual nvPicPr  `xml:"pic:nvPicPr"`
	Fill      blipFill `xml:"pic:blipFill"`
	Shape     spPr     `xml:"pic:spPr"`
}

type nvPicPr struct {
	Props   docPr `xml:"pic:cNvPr"`
	PicProp empty `xml:"pic:cNvPicPr"`
}

type blipFill struct {
	Blip    blip    `xml:"a:blip"`
	Stretch stretch `xml:"a:stretch"`
}

type blip struct {
	Embed string `xml:"r:embed,attr"`
}

type stretch struct {
	FillRect empty `xml:"a:fillRect"`
}

type spPr struct {
	Xfrm xfrm     `xml:"a:xfrm"`
	Geom prstGeom `xml:"a:prstGeom"`
}

type xfrm struct {
	Off point  `xml:"a:off"`
	Ext extent `xml:"a:ext"`
}

type prstGeom struct {
	Prst  string `xml:"prst,attr"`
	AvLst empty  `xml:"a:avLst"`
}

// Package parts.

type contentTypes struct {
	XMLName   xml.Name          `xml:"Types"`
	Namespace string            `xml:"xmlns,attr"`
	Defaults  []contentDefault  `xml:"Default"`
	Overrides []contentOverride `xml:"Override"`
}

type contentDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationships struct {
	XMLName   xml.Name       `xml:"Relationships"`
	Namespace string         `xml:"xmlns,attr"`
	Rels      []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type settings struct {
	XMLName        xml.Name `xml:"w:settings"`
	W              string   `xml:"xmlns:w,attr"`
	DisplayBgShape *empty   `xml:"w:displayBackgroundShape,omitempty"`
	Compat         compat   `xml:"w:compat"`
}

type compat struct {
	Setting compatSetting `xml:"w:compatSetting"`
}

type compatSetting struct {
	Name string `xml:"w:name,attr"`
	URI  string `xml:"w:uri,attr"`
	Val  string `xml:"w:val,attr"`
}
