package doctpl_test

import (
	"fmt"

	"github.com/jafranjemal/aavanamkit/doctpl"
)

func ExampleParse() {
	tpl, err := doctpl.Parse([]byte(`{
		"pageSettings": {"size": "letter"},
		"pages": [{
			"elements": [
				{"id": "title", "type": "Text", "width": 200, "height": 20, "text": "Invoice"},
				{"id": "items", "type": "Table", "y": 40, "width": 500, "height": 300,
				 "columns": [{"header": "Item", "dataKey": "name", "width": 500}]}
			]
		}]
	}`))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, el := range tpl.FirstPage().Elements {
		fmt.Printf("%s %T\n", el.Common().ID, el)
	}
	tbl := tpl.FirstPage().Tables()[0]
	fmt.Println("header height:", tbl.Header.Height)
	// Output:
	// title *doctpl.Text
	// items *doctpl.Table
	// header height: 30
}

func ExamplePageSettings_Dimensions() {
	for _, s := range []doctpl.PageSettings{
		{Size: "A4"},
		{Size: "a5", Orientation: doctpl.OrientationLandscape},
		{Size: doctpl.SizeCustom, Width: 226, Height: 600},
	} {
		w, h := s.Dimensions()
		fmt.Printf("%gx%g\n", w, h)
	}
	// Output:
	// 595x842
	// 595x420
	// 226x600
}
