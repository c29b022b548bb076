package domain

import (
	"encoding/json"
	"testing"
)

func TestPropertiesRename(t *testing.T) {
	t.Run("keeps key at its index", func(t *testing.T) {
		p := NewProperties("a", "1", "b", "1", "c", "1")
		two := "2"

		out, ok := p.Rename("b", "x", &two)
		if !ok {
			t.Fatal("expected rename to succeed")
		}
		keys := out.Keys()
		want := []string{"a", "x", "c"}
		for i := range want {
			if keys[i] != want[i] {
				t.Fatalf("expected keys %v, got %v", want, keys)
			}
		}
		if v, _ := out.Get("x"); v != "2" {
			t.Errorf("expected x=2, got %q", v)
		}
		if p.Has("x") {
			t.Error("rename must not modify the receiver")
		}
	})

	t.Run("carries value when none given", func(t *testing.T) {
		p := NewProperties("ip", "10.0.0.1")
		out, ok := p.Rename("ip", "addr", nil)
		if !ok {
			t.Fatal("expected rename to succeed")
		}
		if v, _ := out.Get("addr"); v != "10.0.0.1" {
			t.Errorf("expected value carried over, got %q", v)
		}
	})

	t.Run("missing key is declined", func(t *testing.T) {
		p := NewProperties("a", "1")
		if _, ok := p.Rename("zzz", "b", nil); ok {
			t.Error("expected rename of missing key to fail")
		}
	})

	t.Run("collision is declined", func(t *testing.T) {
		p := NewProperties("a", "1", "b", "2")
		out, ok := p.Rename("a", "b", nil)
		if ok {
			t.Error("expected collision to fail")
		}
		if !out.Equal(p) {
			t.Errorf("expected properties unchanged, got %v", out)
		}
	})

	t.Run("same key updates value in place", func(t *testing.T) {
		p := NewProperties("a", "1", "b", "2")
		v := "9"
		out, ok := p.Rename("a", "a", &v)
		if !ok {
			t.Fatal("expected rename to succeed")
		}
		if out.String() != "a=9,b=2" {
			t.Errorf("got %s", out)
		}
	})
}

func TestPropertiesSet(t *testing.T) {
	p := NewProperties("a", "1")
	p2 := p.Set("b", "2").Set("a", "3")

	if p2.String() != "a=3,b=2" {
		t.Errorf("expected a=3,b=2, got %s", p2)
	}
	if p.String() != "a=1" {
		t.Errorf("receiver modified: %s", p)
	}
}

func TestPropertiesJSON(t *testing.T) {
	t.Run("encodes in order", func(t *testing.T) {
		p := NewProperties("zeta", "1", "alpha", "2", "mid", "")
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		want := `{"zeta":"1","alpha":"2","mid":""}`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}
	})

	t.Run("decodes in document order", func(t *testing.T) {
		var p Properties
		err := json.Unmarshal([]byte(`{"z":"1","a":2,"m":null,"b":true}`), &p)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if p.String() != "z=1,a=2,m=,b=true" {
			t.Errorf("got %s", p)
		}
	})

	t.Run("rejects non-object", func(t *testing.T) {
		var p Properties
		if err := json.Unmarshal([]byte(`["a"]`), &p); err == nil {
			t.Error("expected error for array input")
		}
	})

	t.Run("item round trip keeps order", func(t *testing.T) {
		item := Item{ID: "server-1", Label: "server-1", Type: "server",
			Properties: NewProperties("uplink", "router-1", "ip", "10.0.0.5")}
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Item
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !back.Properties.Equal(item.Properties) {
			t.Errorf("expected %v, got %v", item.Properties, back.Properties)
		}
	})
}
