// Package review holds the in-memory state operations for the invoice review
// grid: the editable row collection and the append/merge of freshly parsed
// batches.
//
// Every operation returns a new slice instead of mutating the input. The grid
// relies on reference changes for cheap "did anything change" checks, and
// in-flight renders must never observe a half-applied mutation.
package review

import (
	"strconv"
	"sync"
	"time"

	"customsdesk/internal/model"
)

// Field names an editable Item column.
type Field int

const (
	FieldDesignation Field = iota
	FieldName
	FieldQuantity
	FieldMaterial
	FieldWeight
	FieldDimensions
	FieldManufacturer
	FieldDescription
	FieldCondition
	FieldPrice
	FieldAmount
)

// IDGen hands out session-unique row IDs. IDs are based on the wall clock
// (like the original front-end's Date.now()) but forced strictly monotonic so
// two rows created in the same millisecond never collide, and a deleted row's
// ID is never reused.
type IDGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGen() *IDGen {
	return &IDGen{now: time.Now}
}

func (g *IDGen) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// UpdateField returns a new collection with field f of record i replaced.
// An out-of-range index is a silent no-op. Numeric fields must parse; input
// that doesn't parse leaves the record unchanged. Text fields store the raw
// value as-is.
func UpdateField(items []model.Item, i int, f Field, value string) []model.Item {
	if i < 0 || i >= len(items) {
		return items
	}
	out := make([]model.Item, len(items))
	copy(out, items)
	rec := &out[i]
	switch f {
	case FieldDesignation:
		rec.Designation = value
	case FieldName:
		rec.Name = value
	case FieldQuantity:
		rec.Quantity = model.Quantity(value)
	case FieldMaterial:
		rec.Material = value
	case FieldWeight:
		w, err := strconv.ParseFloat(value, 64)
		if err != nil || w < 0 {
			return items
		}
		rec.Weight = w
	case FieldDimensions:
		rec.Dimensions = value
	case FieldManufacturer:
		rec.Manufacturer = value
	case FieldDescription:
		rec.Description = value
	case FieldCondition:
		rec.Condition = value
	case FieldPrice:
		p, err := strconv.ParseFloat(value, 64)
		if err != nil || p < 0 {
			return items
		}
		rec.Price = p
	case FieldAmount:
		a, err := strconv.ParseFloat(value, 64)
		if err != nil || a < 0 {
			return items
		}
		rec.Amount = a
	default:
		return items
	}
	return out
}

// Prepend inserts rec at index 0, assigning a fresh ID from gen when rec has
// none. All existing rows shift down by one position unchanged.
func Prepend(items []model.Item, rec model.Item, gen *IDGen) []model.Item {
	if rec.ID == 0 && gen != nil {
		rec.ID = gen.Next()
	}
	out := make([]model.Item, 0, len(items)+1)
	out = append(out, rec)
	return append(out, items...)
}

// Remove drops the record at index i. The caller is responsible for having
// confirmed the deletion with the user first.
func Remove(items []model.Item, i int) []model.Item {
	if i < 0 || i >= len(items) {
		return items
	}
	out := make([]model.Item, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// ReplaceAll swaps in a full new collection.
func ReplaceAll(records []model.Item) []model.Item {
	out := make([]model.Item, len(records))
	copy(out, records)
	return out
}

// Clear empties the collection.
func Clear() []model.Item {
	return []model.Item{}
}
