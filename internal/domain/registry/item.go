// Package registry holds the raw record shape returned by the trademark
// registry search service.
package registry

import (
	"encoding/json"
	"sort"
	"strconv"
)

// ApplicationNumberKey is the natural identifier of a registry record.
// Every other field is passed through opaquely.
const ApplicationNumberKey = "applicationNumber"

// Item is one semi-structured registry result record. The field set is
// open: the service may add or omit fields freely, so values are kept as
// flat strings instead of a closed struct.
type Item struct {
	fields map[string]string
}

// NewItem creates an item from flat string fields.
func NewItem(fields map[string]string) Item {
	m := make(map[string]string, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return Item{fields: m}
}

// FromPayload flattens a decoded JSON object into an Item. Scalar values
// are stringified; nulls and nested structures are dropped.
func FromPayload(payload map[string]any) Item {
	fields := make(map[string]string, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case float64:
			fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			fields[k] = strconv.FormatBool(val)
		case json.Number:
			fields[k] = val.String()
		}
	}
	return Item{fields: fields}
}

// ApplicationNumber returns the natural identifier, empty for malformed
// records.
func (i Item) ApplicationNumber() string {
	return i.fields[ApplicationNumberKey]
}

// HasApplicationNumber reports whether the record carries its natural
// identifier. Records without one are discarded by the merge step.
func (i Item) HasApplicationNumber() bool {
	return i.fields[ApplicationNumberKey] != ""
}

// Field returns a single field value, empty when absent.
func (i Item) Field(key string) string { return i.fields[key] }

// Fields returns a copy of all fields.
func (i Item) Fields() map[string]string {
	m := make(map[string]string, len(i.fields))
	for k, v := range i.fields {
		m[k] = v
	}
	return m
}

// Keys returns the field names in sorted order.
func (i Item) Keys() []string {
	keys := make([]string, 0, len(i.fields))
	for k := range i.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON serializes the item as a flat JSON object.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.fields)
}
