package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Number is the set of value types a Metric can carry.
type Number interface {
	~int | ~float64
}

// Metric is a value that is either known or unavailable.
// The zero value is unavailable.
type Metric[T Number] struct {
	value T
	known bool
}

// Known returns a metric holding v.
func Known[T Number](v T) Metric[T] {
	return Metric[T]{value: v, known: true}
}

// Unavailable returns a metric that could not be determined.
func Unavailable[T Number]() Metric[T] {
	return Metric[T]{}
}

// Value returns the metric value and whether it is known.
func (m Metric[T]) Value() (T, bool) {
	return m.value, m.known
}

// IsKnown reports whether the metric holds a value.
func (m Metric[T]) IsKnown() bool {
	return m.known
}

func (m Metric[T]) String() string {
	if !m.known {
		return Unknown
	}
	return fmt.Sprint(m.value)
}

// MarshalJSON encodes a known metric as a number and an unavailable one as "unknown".
func (m Metric[T]) MarshalJSON() ([]byte, error) {
	if !m.known {
		return json.Marshal(Unknown)
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts a number or the "unknown" marker. null decodes as unknown.
func (m *Metric[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"`+Unknown+`"`)) || bytes.Equal(data, []byte("null")) {
		*m = Unavailable[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("metric must be a number or %q: %w", Unknown, err)
	}
	*m = Known(v)
	return nil
}
