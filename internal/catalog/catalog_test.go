package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"floorlink/internal/domain"
)

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	for _, name := range []string{"router", "switch", "server", "workstation"} {
		if _, ok := c.Get(name); !ok {
			t.Errorf("expected built-in type %s", name)
		}
	}
	server, _ := c.Get("server")
	if got := server.Properties.Keys(); len(got) != 2 || got[0] != "ip" || got[1] != "uplink" {
		t.Errorf("expected server defaults ip,uplink in order, got %v", got)
	}
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"types/a.toml": {Data: []byte(`
[[types]]
name = "camera"
icon = "cam"

  [[types.properties]]
  key = "zone"
  value = "lobby"
`)},
		"types/README.md": {Data: []byte("ignored")},
	}
	c, err := LoadFromFS(fsys, "types")
	if err != nil {
		t.Fatalf("LoadFromFS: %v", err)
	}
	cam, ok := c.Get("camera")
	if !ok {
		t.Fatal("expected camera type")
	}
	if cam.Label != "camera" {
		t.Errorf("label should default to name, got %q", cam.Label)
	}
	if v, _ := cam.Properties.Get("zone"); v != "lobby" {
		t.Errorf("expected zone=lobby, got %q", v)
	}

	t.Run("rejects nameless type", func(t *testing.T) {
		bad := fstest.MapFS{"t/x.toml": {Data: []byte("[[types]]\nicon = \"x\"\n")}}
		if _, err := LoadFromFS(bad, "t"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLoadAllOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := WriteType(dir, domain.ItemType{
		Name:       "router",
		Icon:       "custom",
		Properties: domain.NewProperties("asn", "65001"),
	}); err != nil {
		t.Fatalf("WriteType: %v", err)
	}

	c, err := LoadAll(dir)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	r, _ := c.Get("router")
	if r.Icon != "custom" || r.Properties.String() != "asn=65001" {
		t.Errorf("expected user override, got %+v", r)
	}
	if len(c.All()) != 4 {
		t.Errorf("override must not add a type, got %d", len(c.All()))
	}

	if _, err := LoadAll(dir + "/missing"); err != nil {
		t.Errorf("missing user dir should be fine: %v", err)
	}
}

func TestWriteType(t *testing.T) {
	dir := t.TempDir()
	if err := WriteType(dir, domain.ItemType{Name: "printer", Icon: "printer"}); err != nil {
		t.Fatalf("WriteType: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "printer.toml"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), `name = "printer"`) {
		t.Errorf("expected the type in the file, got:\n%s", data)
	}

	t.Run("path in the way", func(t *testing.T) {
		if err := os.Mkdir(filepath.Join(dir, "blocked.toml"), 0755); err != nil {
			t.Fatal(err)
		}
		if err := WriteType(dir, domain.ItemType{Name: "blocked"}); err == nil {
			t.Error("expected an error when the file cannot be written")
		}
	})
}

func TestParseProperties(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ip=10.0.0.1,uplink", "ip=10.0.0.1,uplink="},
		{" a = 1 , , b=2", "a=1,b=2"},
		{"", ""},
		{"id=x,label=y,zone=z", "zone=z"},
		{"k=v=w", "k=v=w"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseProperties(tt.in).String(); got != tt.want {
				t.Errorf("ParseProperties(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlace(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("first of type", func(t *testing.T) {
		item, err := c.Place("router", domain.Pt(50, 60), nil)
		if err != nil {
			t.Fatal(err)
		}
		if item.ID != "router-1" || item.Label != "router-1" || item.Type != "router" {
			t.Errorf("unexpected item %+v", item)
		}
		if item.DocumentPosition != domain.Pt(50, 60) {
			t.Errorf("expected drop point, got %v", item.DocumentPosition)
		}
		if !item.Properties.Has("ip") {
			t.Error("expected default properties copied")
		}
	})

	t.Run("counts same type only", func(t *testing.T) {
		existing := []domain.Item{{ID: "router-1", Type: "router"}, {ID: "server-1", Type: "server"}}
		item, _ := c.Place("router", domain.Pt(0, 0), existing)
		if item.ID != "router-2" {
			t.Errorf("expected router-2, got %s", item.ID)
		}
	})

	t.Run("skips ids still in use", func(t *testing.T) {
		existing := []domain.Item{{ID: "router-2", Type: "router"}}
		item, _ := c.Place("router", domain.Pt(0, 0), existing)
		if item.ID != "router-3" {
			t.Errorf("expected router-3, got %s", item.ID)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := c.Place("toaster", domain.Pt(0, 0), nil)
		if !errors.Is(err, ErrUnknownType) {
			t.Errorf("expected ErrUnknownType, got %v", err)
		}
	})

	t.Run("defaults are copies", func(t *testing.T) {
		item, _ := c.Place("server", domain.Pt(0, 0), nil)
		item.Properties[0].Value = "changed"
		fresh, _ := c.Get("server")
		if v, _ := fresh.Properties.Get("ip"); v != "" {
			t.Error("catalog defaults mutated through placed item")
		}
	})
}

func TestDefine(t *testing.T) {
	c := New(nil)
	typ, err := c.Define("camera", "cam", "zone=lobby,poe")
	if err != nil {
		t.Fatal(err)
	}
	if typ.Properties.String() != "zone=lobby,poe=" {
		t.Errorf("got %s", typ.Properties)
	}
	if _, err := c.Define("  ", "", ""); err == nil {
		t.Error("expected blank name error")
	}
}
