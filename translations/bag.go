package translations

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// BagColumn is the mandatory column name for the translation bag. Models
// carrying a Bag under any other column are rejected at schema definition.
const BagColumn = "i18n"

type bagState uint8

const (
	bagAbsent bagState = iota
	bagLoaded
	bagDeferred
)

// Bag stores the non-default-language translated values of a single record
// as a flat key/value document. Keys follow the `<base>_<lang>` convention.
//
// A zero-value Bag is "absent": it behaves as an empty mapping and is lazily
// initialized on first write. A Bag scanned from the database is "loaded"
// even when the column was NULL. The record-storage layer marks the Bag
// "deferred" when the column was excluded from loading; reading through a
// synthetic accessor then fails instead of silently resolving to nothing.
type Bag struct {
	values map[string]string
	state  bagState
}

// NewBag returns an initialized, empty bag.
func NewBag() Bag {
	return Bag{values: map[string]string{}, state: bagLoaded}
}

// BagOf returns a loaded bag seeded with a copy of the provided values.
func BagOf(values map[string]string) Bag {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return Bag{values: copied, state: bagLoaded}
}

// Get returns the value stored under key and whether it was present.
func (b *Bag) Get(key string) (string, bool) {
	if b == nil || b.values == nil {
		return "", false
	}
	value, ok := b.values[key]
	return value, ok
}

// Set stores value under key, initializing an absent bag first.
func (b *Bag) Set(key, value string) {
	b.Init()
	b.values[key] = value
}

// Delete removes key from the bag. Removing a missing key is a no-op.
func (b *Bag) Delete(key string) {
	if b == nil || b.values == nil {
		return
	}
	delete(b.values, key)
}

// Init marks an absent bag as an empty loaded mapping. Loaded and deferred
// bags are left untouched except that deferred bags stay deferred.
func (b *Bag) Init() {
	if b.values == nil {
		b.values = map[string]string{}
	}
	if b.state == bagAbsent {
		b.state = bagLoaded
	}
}

// Len reports the number of stored translation values.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.values)
}

// Keys returns the stored keys in lexical order.
func (b *Bag) Keys() []string {
	if b == nil || len(b.values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b.values))
	for key := range b.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a defensive copy of the stored values.
func (b *Bag) Map() map[string]string {
	if b == nil || len(b.values) == 0 {
		return nil
	}
	copied := make(map[string]string, len(b.values))
	for key, value := range b.values {
		copied[key] = value
	}
	return copied
}

// Loaded reports whether the bag holds usable values (scanned or built in
// memory). An absent bag is not loaded but still readable as empty.
func (b *Bag) Loaded() bool {
	return b != nil && b.state == bagLoaded
}

// Deferred reports whether the bag column was excluded from loading.
func (b *Bag) Deferred() bool {
	return b != nil && b.state == bagDeferred
}

// MarkDeferred flags the bag as excluded from loading. Accessor reads fail
// with a DeferredAccessError until the record is reloaded with the column.
func (b *Bag) MarkDeferred() {
	b.values = nil
	b.state = bagDeferred
}

// Scan implements sql.Scanner. A NULL column yields a loaded, empty bag so
// scanned records are distinguishable from records whose column was never
// selected.
func (b *Bag) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		b.values = nil
		b.state = bagLoaded
		return nil
	case []byte:
		return b.scanJSON(value)
	case string:
		return b.scanJSON([]byte(value))
	default:
		return fmt.Errorf("translations: cannot scan %T into Bag", src)
	}
}

func (b *Bag) scanJSON(data []byte) error {
	if len(data) == 0 {
		b.values = nil
		b.state = bagLoaded
		return nil
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("translations: invalid bag document: %w", err)
	}
	b.values = values
	b.state = bagLoaded
	return nil
}

// Value implements driver.Valuer. Absent bags persist as NULL; deferred bags
// refuse to persist so an unloaded column can never clobber stored values.
func (b Bag) Value() (driver.Value, error) {
	switch b.state {
	case bagDeferred:
		return nil, ErrTranslationsDeferred
	case bagAbsent:
		return nil, nil
	}
	if b.values == nil {
		return nil, nil
	}
	data, err := json.Marshal(b.values)
	if err != nil {
		return nil, err
	}
	// Persist as text: SQLite's JSON functions reject BLOB input, and
	// Postgres casts text to jsonb on the way in.
	return string(data), nil
}

// MarshalJSON encodes the stored values, or null for absent/deferred bags.
func (b Bag) MarshalJSON() ([]byte, error) {
	if b.state != bagLoaded || b.values == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.values)
}

// UnmarshalJSON decodes a `{key: value}` document into a loaded bag.
func (b *Bag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		b.values = nil
		b.state = bagLoaded
		return nil
	}
	return b.scanJSON(data)
}
