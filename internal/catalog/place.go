package catalog

import (
	"fmt"
	"strings"

	"floorlink/internal/domain"
)

// Place synthesises a new item of typeName dropped at a document point.
// The id is "<type>-<n>" where n is one more than the number of existing
// items of that type, bumped until it is unused. The label starts equal to
// the id and the type's default properties are copied onto the item.
func (c *Catalog) Place(typeName string, at domain.Point, existing []domain.Item) (domain.Item, error) {
	typeName = strings.TrimSpace(typeName)
	t, ok := c.Get(typeName)
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}

	used := make(map[string]bool, len(existing))
	count := 0
	for _, item := range existing {
		used[item.ID] = true
		if item.Type == typeName {
			count++
		}
	}
	n := count + 1
	id := fmt.Sprintf("%s-%d", typeName, n)
	for used[id] {
		n++
		id = fmt.Sprintf("%s-%d", typeName, n)
	}

	return domain.Item{
		ID:               id,
		Label:            id,
		Type:             typeName,
		DocumentPosition: at,
		Properties:       t.Properties.Clone(),
	}, nil
}
