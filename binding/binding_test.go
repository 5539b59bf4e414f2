package binding

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/jafranjemal/aavanamkit/doctpl"
)

func mustJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decoding %s: %v", s, err)
	}
	return v
}

func TestResolve(t *testing.T) {
	data := mustJSON(t, `{
		"customer": {"name": "Ada", "address": {"city": "Colombo"}, "nick": null},
		"items": [{"name": "x"}],
		"total": 0,
		"label": "plain"
	}`)

	tests := []struct {
		name    string
		path    string
		want    any
		defined bool
	}{
		{"top level", "total", 0.0, true},
		{"nested", "customer.name", "Ada", true},
		{"deep", "customer.address.city", "Colombo", true},
		{"null leaf", "customer.nick", nil, true},
		{"missing leaf", "customer.email", nil, false},
		{"missing intermediate", "vendor.name", nil, false},
		{"through scalar", "label.length", nil, false},
		{"through array", "items.name", nil, false},
		{"empty path", "", nil, false},
		{"only brackets", "[]", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(data, tt.path)
			if ok != tt.defined {
				t.Fatalf("Resolve(%q) defined = %v, want %v", tt.path, ok, tt.defined)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolveArrayMarker(t *testing.T) {
	data := mustJSON(t, `{"items":[{"name":"x"}]}`)

	got, ok := Resolve(data, "items[]")
	if !ok {
		t.Fatal("items[] should resolve")
	}
	want := []any{map[string]any{"name": "x"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve(items[]) = %#v, want the array itself", got)
	}
}

func TestResolveNilAndGoMaps(t *testing.T) {
	if _, ok := Resolve(nil, "a"); ok {
		t.Error("nil data should not resolve")
	}

	data := map[string]map[string]string{"user": {"name": "Lin"}}
	got, ok := Resolve(data, "user.name")
	if !ok || got != "Lin" {
		t.Errorf("Resolve on Go maps = %v, %v", got, ok)
	}
}

func cond(field, op, value string) doctpl.Element {
	return &doctpl.Text{Base: doctpl.Base{
		ID:          "t",
		Type:        doctpl.KindText,
		Conditional: &doctpl.Conditional{Field: field, Operator: op, Value: value},
	}}
}

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name string
		el   doctpl.Element
		data string
		want bool
	}{
		{"no condition", &doctpl.Text{}, `{}`, true},
		{"empty field", cond("", ">", "0"), `{}`, true},

		{"greater true", cond("discount", ">", "0"), `{"discount": 5}`, true},
		{"greater false", cond("discount", ">", "0"), `{"discount": 0}`, false},
		{"greater absent", cond("discount", ">", "0"), `{}`, false},
		{"greater non numeric", cond("discount", ">", "0"), `{"discount": "lots"}`, false},
		{"greater numeric string", cond("discount", ">", "0"), `{"discount": "2.5"}`, true},
		{"less true", cond("qty", "<", "10"), `{"qty": 3}`, true},
		{"less null is zero", cond("qty", "<", "1"), `{"qty": null}`, true},
		{"less absent", cond("qty", "<", "10"), `{}`, false},

		{"exists value", cond("note", "exists", ""), `{"note": "hi"}`, true},
		{"exists zero", cond("note", "exists", ""), `{"note": 0}`, true},
		{"exists empty string", cond("note", "exists", ""), `{"note": ""}`, false},
		{"exists null", cond("note", "exists", ""), `{"note": null}`, false},
		{"exists absent", cond("note", "exists", ""), `{}`, false},
		{"notExists absent", cond("note", "notExists", ""), `{}`, true},
		{"notExists value", cond("note", "notExists", ""), `{"note": "x"}`, false},

		{"equal string", cond("status", "==", "paid"), `{"status": "paid"}`, true},
		{"equal number", cond("count", "==", "3"), `{"count": 3}`, true},
		{"equal bool", cond("flag", "==", "true"), `{"flag": true}`, true},
		{"equal mismatch", cond("status", "==", "paid"), `{"status": "due"}`, false},
		{"equal absent", cond("status", "==", "undefined"), `{}`, true},
		{"not equal", cond("status", "!=", "paid"), `{"status": "due"}`, true},
		{"not equal same", cond("status", "!=", "paid"), `{"status": "paid"}`, false},

		{"nested field", cond("customer.tier", "==", "gold"), `{"customer": {"tier": "gold"}}`, true},
		{"unknown operator", cond("x", "~=", "1"), `{}`, true},
		{"empty operator", cond("x", "", "1"), `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.el, mustJSON(t, tt.data)); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBindOverridesWhenDefined(t *testing.T) {
	el := &doctpl.Text{
		Base: doctpl.Base{ID: "name", Type: doctpl.KindText,
			DataBinding: &doctpl.DataBinding{Property: "text", Field: "user.name"}},
		Text: "placeholder",
	}

	got := Bind(el, mustJSON(t, `{"user": {"name": "John Doe"}}`)).(*doctpl.Text)
	if got.Text != "John Doe" {
		t.Errorf("bound text = %q, want John Doe", got.Text)
	}
	if el.Text != "placeholder" {
		t.Errorf("input element was mutated: %q", el.Text)
	}
	if got.DataBinding == el.DataBinding {
		t.Error("binding pointer shared between input and result")
	}
}

func TestBindKeepsStaticValueWhenUndefined(t *testing.T) {
	el := &doctpl.Text{
		Base: doctpl.Base{ID: "name", Type: doctpl.KindText,
			DataBinding: &doctpl.DataBinding{Property: "text", Field: "user.name"}},
		Text: "placeholder",
	}

	for _, data := range []string{`{}`, `{"user": {}}`, `{"user": "flat"}`, `null`} {
		got := Bind(el, mustJSON(t, data)).(*doctpl.Text)
		if got.Text != "placeholder" {
			t.Errorf("data %s: text = %q, want placeholder", data, got.Text)
		}
	}
}

func TestBindCoercesValues(t *testing.T) {
	el := &doctpl.Text{
		Base: doctpl.Base{DataBinding: &doctpl.DataBinding{Property: "text", Field: "total"}},
	}
	got := Bind(el, map[string]any{"total": 42.5}).(*doctpl.Text)
	if got.Text != "42.5" {
		t.Errorf("text = %q, want 42.5", got.Text)
	}

	img := &doctpl.Image{
		Base: doctpl.Base{DataBinding: &doctpl.DataBinding{Property: "src", Field: "logo"}},
		Src:  "static.png",
	}
	if got := Bind(img, map[string]any{"logo": "https://x/logo.png"}).(*doctpl.Image); got.Src != "https://x/logo.png" {
		t.Errorf("src = %q", got.Src)
	}
}

func TestBindUnknownPropertyIsIgnored(t *testing.T) {
	el := &doctpl.Text{
		Base: doctpl.Base{DataBinding: &doctpl.DataBinding{Property: "sparkle", Field: "v"}},
		Text: "same",
	}
	got := Bind(el, map[string]any{"v": "x"}).(*doctpl.Text)
	if got.Text != "same" {
		t.Errorf("text = %q, want same", got.Text)
	}
}

func TestRows(t *testing.T) {
	tbl := &doctpl.Table{
		Base:  doctpl.Base{DataBinding: &doctpl.DataBinding{Property: "items", Field: "items[]"}},
		Items: []any{"static"},
	}

	rows := Rows(tbl, mustJSON(t, `{"items": [{"a": 1}, {"a": 2}]}`))
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(tbl.Items) != 1 {
		t.Error("input table was mutated")
	}

	if rows := Rows(tbl, mustJSON(t, `{}`)); len(rows) != 1 {
		t.Errorf("unresolved binding should keep static items, got %d rows", len(rows))
	}

	goRows := map[string]any{"items": []map[string]any{{"a": 1}}}
	if rows := Rows(tbl, goRows); len(rows) != 1 {
		t.Errorf("Go slice rows = %d, want 1", len(rows))
	}

	if rows := Rows(tbl, map[string]any{"items": "oops"}); rows != nil {
		t.Errorf("non-array binding should produce no rows, got %v", rows)
	}
}
