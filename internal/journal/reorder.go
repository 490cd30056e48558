package journal

import (
	"errors"

	"github.com/jiho-dev/recap-archive/internal/model"
)

// ErrBadIndex is returned when a reorder position falls outside the
// list, e.g. when a delete shrank the list while a drag was in flight.
var ErrBadIndex = errors.New("index out of range")

// Move returns a copy of list with the element at src moved to dst:
// the element is removed first, then inserted at dst in the already
// shortened list. src == dst returns an unchanged copy.
func Move(list []model.Memory, src, dst int) ([]model.Memory, error) {
	if src < 0 || src >= len(list) || dst < 0 || dst >= len(list) {
		return nil, ErrBadIndex
	}

	out := make([]model.Memory, len(list))
	copy(out, list)
	if src == dst {
		return out, nil
	}

	moved := out[src]
	out = append(out[:src], out[src+1:]...)
	out = append(out[:dst], append([]model.Memory{moved}, out[dst:]...)...)
	return out, nil
}
