package secs2

import (
	"reflect"
	"strconv"
)

// scalarToInt64 applies the numeric scalar coercion rule of spec §4.2 to a
// single host value: booleans, any sized integer, and numeric strings are
// accepted; anything else is rejected.
func scalarToInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// scalarToUint64 is scalarToInt64's unsigned counterpart.
func scalarToUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int8:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int16:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int32:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// scalarToFloat64 accepts booleans, any sized integer or float, and
// numeric strings, per the same scalar coercion rule applied to floats.
func scalarToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		if n, ok := scalarToInt64(value); ok {
			return float64(n), true
		}
		return 0, false
	}
}

// asSlice expands a value into a slice of elements for vector assignment.
// A single element list/array, or a non-slice scalar, is normalized to a
// one-element slice; an existing slice/array is expanded in place.
func asSlice(value interface{}) ([]interface{}, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if b, ok := value.([]byte); ok {
			out := make([]interface{}, len(b))
			for i, v := range b {
				out[i] = v
			}
			return out, true
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return []interface{}{value}, true
	}
}
