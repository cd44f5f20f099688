// SPDX-License-Identifier: Apache-2.0
package record

import (
	"fmt"
	"strconv"
)

// PasswordField is the reserved field that always serializes on the first line
const PasswordField = "PASSWORD"

// Record is an ordered field map. Field names are unique within a record.
type Record struct {
	keys   []string
	values map[string]string
}

// New returns an empty record
func New() *Record {
	return &Record{values: make(map[string]string)}
}

// FromPairs builds a record from alternating key/value arguments.
// A trailing key without a value is stored with an empty value.
func FromPairs(kv ...string) *Record {
	r := New()
	for i := 0; i < len(kv); i += 2 {
		value := ""
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		r.Set(kv[i], value)
	}
	return r
}

// Set stores value under key, keeping the original position when the key already exists
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Delete removes key. Removing an absent key is a no-op.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns field names in insertion order
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields
func (r *Record) Len() int {
	return len(r.keys)
}

// Password returns the PASSWORD field, or "" when absent
func (r *Record) Password() string {
	return r.values[PasswordField]
}

// AddUnique stores value under key, or under key_1, key_2, ... when key is taken.
// It returns the name actually used.
func (r *Record) AddUnique(key, value string) string {
	name := key
	for i := 1; r.Has(name); i++ {
		name = key + "_" + strconv.Itoa(i)
	}
	r.Set(name, value)
	return name
}

// Equal reports whether both records hold the same fields and values.
// Field order is not compared.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.values) != len(other.values) {
		return false
	}
	for k, v := range r.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Map returns a copy of the fields as a plain map
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r *Record) String() string {
	return fmt.Sprintf("record(%d fields)", r.Len())
}
