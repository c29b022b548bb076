package domain

import "testing"

func TestItemPatchApply(t *testing.T) {
	base := Item{
		ID:               "router-1",
		Label:            "router-1",
		Type:             "router",
		DocumentPosition: Pt(50, 60),
		Properties:       NewProperties("ip", "10.0.0.1"),
	}

	t.Run("merges only set fields", func(t *testing.T) {
		label := "core"
		pos := Pt(200, 60)
		out := ItemPatch{ID: base.ID, Label: &label, DocumentPosition: &pos}.Apply(base)

		if out.Label != "core" {
			t.Errorf("expected label core, got %s", out.Label)
		}
		if out.DocumentPosition != pos {
			t.Errorf("expected %v, got %v", pos, out.DocumentPosition)
		}
		if out.Type != "router" {
			t.Errorf("type should be untouched, got %s", out.Type)
		}
		if !out.Properties.Equal(base.Properties) {
			t.Errorf("properties should be untouched, got %v", out.Properties)
		}
	})

	t.Run("replaces properties wholesale", func(t *testing.T) {
		props := NewProperties("uplink", "switch-1")
		out := ItemPatch{ID: base.ID, Properties: &props}.Apply(base)
		if out.Properties.String() != "uplink=switch-1" {
			t.Errorf("got %s", out.Properties)
		}
	})

	t.Run("mask reflects fields", func(t *testing.T) {
		pos := Pt(1, 1)
		m := ItemPatch{DocumentPosition: &pos}.Mask()
		if !m.Has(MaskDocumentPosition) || m.Has(MaskLabel) {
			t.Errorf("unexpected mask %b", m)
		}
	})
}

func TestProjectValidate(t *testing.T) {
	t.Run("accepts unique ids", func(t *testing.T) {
		p := &Project{Items: []Item{{ID: "a"}, {ID: "b"}}}
		if err := p.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		p := &Project{Items: []Item{{ID: "a"}, {ID: "a"}}}
		if err := p.Validate(); err == nil {
			t.Error("expected duplicate id error")
		}
	})

	t.Run("rejects empty id", func(t *testing.T) {
		p := &Project{Items: []Item{{ID: ""}}}
		if err := p.Validate(); err != ErrEmptyID {
			t.Errorf("expected ErrEmptyID, got %v", err)
		}
	})
}
