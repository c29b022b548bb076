// Package catalog holds the item types that can be placed on a document and
// synthesises new items from a type name and a drop point.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"floorlink/internal/domain"
)

//go:embed types/*.toml
var builtin embed.FS

// ErrUnknownType is returned when placing an item of an unregistered type.
var ErrUnknownType = errors.New("unknown item type")

type propertyEntry struct {
	Key   string `toml:"key"`
	Value string `toml:"value"`
}

type typeEntry struct {
	Name        string          `toml:"name"`
	Label       string          `toml:"label,omitempty"`
	Icon        string          `toml:"icon,omitempty"`
	Description string          `toml:"description,omitempty"`
	Properties  []propertyEntry `toml:"properties,omitempty"`
}

type typeFile struct {
	Types []typeEntry `toml:"types"`
}

func (e typeEntry) itemType() domain.ItemType {
	t := domain.ItemType{
		Name:        e.Name,
		Label:       e.Label,
		Icon:        e.Icon,
		Description: e.Description,
	}
	if t.Label == "" {
		t.Label = e.Name
	}
	for _, p := range e.Properties {
		t.Properties = t.Properties.Set(p.Key, p.Value)
	}
	return t
}

func entryFor(t domain.ItemType) typeEntry {
	e := typeEntry{Name: t.Name, Label: t.Label, Icon: t.Icon, Description: t.Description}
	for _, p := range t.Properties {
		e.Properties = append(e.Properties, propertyEntry{Key: p.Key, Value: p.Value})
	}
	return e
}

// Catalog maps type names to item types, keeping definition order.
type Catalog struct {
	types  []domain.ItemType
	byName map[string]int
}

// New creates a catalog. Later duplicates replace earlier ones in place.
func New(types []domain.ItemType) *Catalog {
	c := &Catalog{byName: make(map[string]int, len(types))}
	for _, t := range types {
		c.put(t)
	}
	return c
}

func (c *Catalog) put(t domain.ItemType) {
	if i, ok := c.byName[t.Name]; ok {
		c.types[i] = t
		return
	}
	c.byName[t.Name] = len(c.types)
	c.types = append(c.types, t)
}

// Builtin loads the embedded router/switch/server/workstation types.
func Builtin() (*Catalog, error) {
	return LoadFromFS(builtin, "types")
}

// LoadFromFS loads every .toml file in dir of fsys, in name order.
func LoadFromFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", dir, err)
	}

	var types []domain.ItemType
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var tf typeFile
		if err := toml.Unmarshal(data, &tf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		for _, e := range tf.Types {
			if e.Name == "" {
				return nil, fmt.Errorf("parsing %s: type without name", entry.Name())
			}
			types = append(types, e.itemType())
		}
	}
	return New(types), nil
}

// LoadAll merges the built-in types with user type files from dir. A
// missing dir is fine; user types override built-ins of the same name.
func LoadAll(dir string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return c, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	user, err := LoadFromFS(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}
	for _, t := range user.All() {
		c.put(t)
	}
	return c, nil
}

// All returns the types in definition order.
func (c *Catalog) All() []domain.ItemType {
	out := make([]domain.ItemType, len(c.types))
	for i, t := range c.types {
		t.Properties = t.Properties.Clone()
		out[i] = t
	}
	return out
}

// Names returns the type names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for _, t := range c.types {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Get looks up a type by name.
func (c *Catalog) Get(name string) (domain.ItemType, bool) {
	i, ok := c.byName[name]
	if !ok {
		return domain.ItemType{}, false
	}
	t := c.types[i]
	t.Properties = t.Properties.Clone()
	return t, true
}

// Define adds or replaces a type. rawProps uses the "k=v,k2" syntax of
// ParseProperties.
func (c *Catalog) Define(name, icon, rawProps string) (domain.ItemType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ItemType{}, fmt.Errorf("item type name is blank")
	}
	t := domain.ItemType{
		Name:       name,
		Label:      name,
		Icon:       icon,
		Properties: ParseProperties(rawProps),
	}
	c.put(t)
	return t, nil
}

// ParseProperties parses "k=v,k2=v2,k3" into ordered properties. Bare keys
// get an empty value; blank segments are skipped.
func ParseProperties(raw string) domain.Properties {
	var props domain.Properties
	for _, part := range strings.Split(raw, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if key == "" || domain.IsIdentityField(key) {
			continue
		}
		props = props.Set(key, strings.TrimSpace(value))
	}
	return props
}

// WriteType saves a type to dir/<name>.toml so LoadAll picks it up.
func WriteType(dir string, t domain.ItemType) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, t.Name+".toml"))
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(typeFile{Types: []typeEntry{entryFor(t)}}); err != nil {
		f.Close()
		return fmt.Errorf("encode type %s: %w", t.Name, err)
	}
	return f.Close()
}
