package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/semsearch/model"
)

var (
	// ErrNoMatchingEntity is returned by AnyMatchingEntity when the inputs
	// do not overlap.
	ErrNoMatchingEntity = errors.New("engine: no matching entity")

	// ErrNotWellFormed is returned for entity lists whose ids are not
	// strictly increasing.
	ErrNotWellFormed = errors.New("engine: entity list not well-formed")
)

// CheckWellFormed returns ErrNotWellFormed if list is not strictly
// increasing by id.
func CheckWellFormed(list model.EntityList) error {
	for i := 1; i < len(list); i++ {
		if list[i-1].Id >= list[i].Id {
			return fmt.Errorf("%w: id %d at %d follows %d", ErrNotWellFormed, list[i].Id, i, list[i-1].Id)
		}
	}
	return nil
}
