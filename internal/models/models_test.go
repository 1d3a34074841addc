package models

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRowGroup(t *testing.T) {
	t.Run("Empty Constructor Holds One Row", func(t *testing.T) {
		g := NewRowGroup[UrlSelector]()
		if g.Len() != 1 {
			t.Fatalf("expected 1 row, got %d", g.Len())
		}
	})

	t.Run("Remove At Floor Is No-Op", func(t *testing.T) {
		g := NewRowGroup(UrlSelector{URL: "http://a"})
		for range 3 {
			if g.Remove() {
				t.Error("Remove() should report false at the floor")
			}
		}
		if g.Len() != 1 {
			t.Errorf("expected 1 row, got %d", g.Len())
		}
		row, _ := g.At(0)
		if row.URL != "http://a" {
			t.Errorf("the last row should be untouched, got %+v", row)
		}
	})

	t.Run("Add Duplicates Last Row", func(t *testing.T) {
		g := NewRowGroup(
			ContentSelector{Name: "first"},
			ContentSelector{Name: "injury", XPath: "//td[2]/text()", Type: SelectorString},
		)

		if n := g.Add(); n != 3 {
			t.Fatalf("expected length 3, got %d", n)
		}

		rows := g.Rows()
		if rows[2] != rows[1] {
			t.Errorf("new row %+v should duplicate %+v", rows[2], rows[1])
		}

		if err := g.Set(2, ContentSelector{Name: "changed"}); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		if prev, _ := g.At(1); prev.Name != "injury" {
			t.Error("editing the duplicate must not change the original row")
		}
	})

	t.Run("Add Then Remove Restores Length", func(t *testing.T) {
		g := NewRowGroup(UrlSelector{URL: "u"})
		g.Add()
		g.Add()
		if !g.Remove() || !g.Remove() {
			t.Fatal("Remove() should succeed above the floor")
		}
		if g.Len() != 1 {
			t.Errorf("expected 1 row, got %d", g.Len())
		}
	})

	t.Run("Out Of Range", func(t *testing.T) {
		g := NewRowGroup[UrlSelector]()
		if _, err := g.At(1); err == nil {
			t.Error("expected error for At(1)")
		}
		if err := g.Set(-1, UrlSelector{}); err == nil {
			t.Error("expected error for Set(-1)")
		}
	})

	t.Run("Zero Group Keeps Floor", func(t *testing.T) {
		var g RowGroup[UrlSelector]
		if g.Len() != 1 || len(g.Rows()) != 1 {
			t.Fatalf("zero group should read as one row, got %d", g.Len())
		}
		if g.Remove() {
			t.Error("Remove() on a zero group should be a no-op")
		}
		if n := g.Add(); n != 2 {
			t.Errorf("Add() on a zero group = %d, want 2", n)
		}
	})

	t.Run("Nil Group Reads One Row", func(t *testing.T) {
		var g *RowGroup[ContentSelector]
		if g.Len() != 1 || len(g.Rows()) != 1 {
			t.Errorf("nil group should read as one row, got %d", g.Len())
		}
		if _, err := g.At(0); err != nil {
			t.Errorf("At(0) on nil group: %v", err)
		}
	})

	t.Run("Rows Returns Copy", func(t *testing.T) {
		g := NewRowGroup(UrlSelector{URL: "u"})
		rows := g.Rows()
		rows[0].URL = "mutated"
		if row, _ := g.At(0); row.URL != "u" {
			t.Error("Rows() should not expose internal storage")
		}
	})
}

func sampleForm() *TaskForm {
	return FormFromDefinition(TaskDefinition{
		Name:      "injuries",
		ResultsID: "players",
		UrlSelectors: []UrlSelector{
			{URL: "http://www.transfermarkt.de/spieler/verletzungen/spieler/10"},
		},
		ContentSelectors: []ContentSelector{
			{Name: "spieler_id", IsKey: true, XPath: `(//a[@class="megamenu"])[1]/@href`, Type: SelectorInteger},
			{Name: "injury", XPath: `//table[@class="items"]//tr/td[2]/text()`},
		},
	})
}

func TestTaskForm(t *testing.T) {
	t.Run("Encode Keeps Document Order", func(t *testing.T) {
		body := sampleForm().Encode()

		var keys []string
		for _, pair := range strings.Split(body, "&") {
			key, _, _ := strings.Cut(pair, "=")
			keys = append(keys, key)
		}

		want := []string{
			FieldName, FieldResultsID,
			FieldURL, FieldURLTaskKey, FieldURLSelectorName, FieldURLSelectorName2,
			FieldSelectorName, FieldSelectorIsKey, FieldSelectorXPath, FieldSelectorType, FieldSelectorRegex,
			FieldSelectorName, FieldSelectorIsKey, FieldSelectorXPath, FieldSelectorType, FieldSelectorRegex,
		}
		if strings.Join(keys, ",") != strings.Join(want, ",") {
			t.Errorf("field order = %v, want %v", keys, want)
		}

		if !strings.HasPrefix(body, "name=injuries&results_id=players&") {
			t.Errorf("unexpected body prefix: %s", body)
		}
	})

	t.Run("Literal Form Encodes", func(t *testing.T) {
		form := &TaskForm{Name: "t1"}

		body := form.Encode()
		if !strings.Contains(body, FieldURL+"=&") || !strings.Contains(body, FieldSelectorName+"=&") {
			t.Errorf("expected one empty row per group, got %s", body)
		}
		def := form.Definition()
		if len(def.UrlSelectors) != 1 || len(def.ContentSelectors) != 1 {
			t.Errorf("unexpected definition %+v", def)
		}

		form.Normalize()
		if form.UrlSelectors == nil || form.ContentSelectors == nil {
			t.Fatal("Normalize() should fill both groups")
		}
		if form.UrlSelectors.Add() != 2 {
			t.Error("normalized group should accept rows")
		}
	})

	t.Run("Decode Aligns Rows", func(t *testing.T) {
		values, err := url.ParseQuery(sampleForm().Encode())
		if err != nil {
			t.Fatalf("body should parse: %v", err)
		}

		form, err := DecodeTaskForm(values)
		if err != nil {
			t.Fatalf("DecodeTaskForm() error: %v", err)
		}

		if form.ContentSelectors.Len() != 2 {
			t.Fatalf("expected 2 content selectors, got %d", form.ContentSelectors.Len())
		}
		first, _ := form.ContentSelectors.At(0)
		if !first.IsKey || first.Type != SelectorInteger || first.XPath != `(//a[@class="megamenu"])[1]/@href` {
			t.Errorf("first selector decoded as %+v", first)
		}
		second, _ := form.ContentSelectors.At(1)
		if second.IsKey || second.Name != "injury" {
			t.Errorf("second selector decoded as %+v", second)
		}
	})

	t.Run("Decode Rejects Unknown Type", func(t *testing.T) {
		values := url.Values{FieldSelectorName: {"x"}, FieldSelectorType: {"blob"}}
		if _, err := DecodeTaskForm(values); err == nil {
			t.Error("expected error for unknown selector type")
		}
	})

	t.Run("Decode Empty Body Keeps Floor", func(t *testing.T) {
		form, err := DecodeTaskForm(url.Values{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if form.UrlSelectors.Len() != 1 || form.ContentSelectors.Len() != 1 {
			t.Error("decoded groups should hold at least one row")
		}
	})

	t.Run("Selector Names And Keys", func(t *testing.T) {
		form := sampleForm()
		form.ContentSelectors.Add()
		_ = form.ContentSelectors.Set(2, ContentSelector{})

		names := form.SelectorNames()
		if strings.Join(names, ",") != "spieler_id,injury" {
			t.Errorf("SelectorNames() = %v", names)
		}
		if keys := form.KeySelectors(); len(keys) != 1 || keys[0].Name != "spieler_id" {
			t.Errorf("KeySelectors() = %v", keys)
		}
	})

	t.Run("LoadTaskFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "task.toml")
		content := `name = "injuries"
results_id = "players"

[[url_selectors]]
url = "http://example.com/a"

[[url_selectors]]
url = "http://example.com/b"

[[content_selectors]]
name = "from"
is_key = true
xpath = "//td[3]/text()"
type = "datetime"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write task file: %v", err)
		}

		form, err := LoadTaskFile(path)
		if err != nil {
			t.Fatalf("LoadTaskFile() error: %v", err)
		}
		if form.Name != "injuries" || form.UrlSelectors.Len() != 2 {
			t.Errorf("unexpected form %+v", form.Definition())
		}
		row, _ := form.ContentSelectors.At(0)
		if row.Type != SelectorDatetime || !row.IsKey {
			t.Errorf("unexpected content selector %+v", row)
		}
	})

	t.Run("LoadTaskFile Requires Name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "task.toml")
		if err := os.WriteFile(path, []byte("results_id = \"x\"\n"), 0644); err != nil {
			t.Fatalf("failed to write task file: %v", err)
		}
		if _, err := LoadTaskFile(path); err == nil {
			t.Error("expected error for missing name")
		}
	})
}

func TestStatus(t *testing.T) {
	tc := []struct {
		name     string
		status   Status
		wantKind StatusKind
		wantDone bool
	}{
		{name: "empty is idle", status: StatusFromServer(""), wantKind: StatusIdle, wantDone: true},
		{name: "message is running", status: StatusFromServer("3/10 urls"), wantKind: StatusRunning, wantDone: false},
		{name: "error is unknown", status: UnknownStatus(errors.New("connection refused")), wantKind: StatusUnknown, wantDone: false},
		{name: "nil error is unknown", status: UnknownStatus(nil), wantKind: StatusUnknown, wantDone: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", tt.status.Kind, tt.wantKind)
			}
			if tt.status.Done() != tt.wantDone {
				t.Errorf("Done() = %v, want %v", tt.status.Done(), tt.wantDone)
			}
		})
	}
}

func TestViewMode(t *testing.T) {
	t.Run("Fragment", func(t *testing.T) {
		if ViewFromFragment("#advanced") != AdvancedView || ViewFromFragment("advanced") != AdvancedView {
			t.Error("advanced fragment should select the advanced view")
		}
		if ViewFromFragment("") != SimpleView || ViewFromFragment("#other") != SimpleView {
			t.Error("other fragments should select the simple view")
		}
		if ViewFromFragment(AdvancedView.Fragment()) != AdvancedView {
			t.Error("Fragment() should round trip")
		}
	})

	t.Run("Toggle From Fragment", func(t *testing.T) {
		tc := map[string]ViewMode{
			"":          AdvancedView,
			"#":         AdvancedView,
			"advanced":  SimpleView,
			"#advanced": SimpleView,
			"section2":  SimpleView,
		}
		for fragment, want := range tc {
			if got := ToggleFromFragment(fragment); got != want {
				t.Errorf("ToggleFromFragment(%q) = %v, want %v", fragment, got, want)
			}
		}
	})

	t.Run("Toggle Twice Is Identity", func(t *testing.T) {
		for _, v := range []ViewMode{SimpleView, AdvancedView} {
			twice := v.Toggle().Toggle()
			if twice != v || twice.ToggleLabel() != v.ToggleLabel() || twice.ShowAdvanced() != v.ShowAdvanced() {
				t.Errorf("toggling %v twice gave %v", v, twice)
			}
		}
	})

	t.Run("Labels", func(t *testing.T) {
		if SimpleView.ToggleLabel() != "Advanced View" {
			t.Errorf("simple label = %q", SimpleView.ToggleLabel())
		}
		if AdvancedView.ToggleLabel() != "Simple View" {
			t.Errorf("advanced label = %q", AdvancedView.ToggleLabel())
		}
	})
}

func TestActivity(t *testing.T) {
	ok := NewActivity("t1", ActionSave, "Successfully Saved", nil)
	if !ok.OK || ok.Outcome() != "ok" || ok.Validate() != nil {
		t.Errorf("unexpected activity %+v", ok)
	}

	failed := NewActivity("t1", ActionSchedule, "", errors.New("boom"))
	if failed.OK || failed.Message != "boom" || failed.Outcome() != "failed" {
		t.Errorf("unexpected activity %+v", failed)
	}

	if err := NewActivity("", ActionSave, "", nil).Validate(); err == nil {
		t.Error("expected validation error for empty task")
	}
}
