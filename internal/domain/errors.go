package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyID is returned when an item has no id.
var ErrEmptyID = errors.New("item id is empty")

// DuplicateIDError reports two items sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate item id %q", e.ID)
}
