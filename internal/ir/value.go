package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Truthy reports whether v counts as "set" for the binding engine.
//
// Falsy values: nil, false, "", any numeric zero, NaN, and nil
// funcs/maps/slices/pointers stored in an interface. Everything else,
// including empty slices and maps, is truthy.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int8:
		return val != 0
	case int16:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint8:
		return val != 0
	case uint16:
		return val != 0
	case uint32:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case float64:
		return val != 0 && !math.IsNaN(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// String renders v the way a template shows it: numbers without trailing
// zeros, slices joined with ",", objects as "[object Object]". nil renders
// as "".
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = String(elem)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}
	if reflect.ValueOf(v).Kind() == reflect.Func {
		return "function"
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Normalize converts decoded data into the value model: json.Number and
// *big.Int become int64 (or float64), map[any]any becomes map[string]any,
// and containers are normalized recursively. Other values pass through.
func Normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case *big.Int:
		if val.IsInt64() {
			return val.Int64()
		}
		f, _ := new(big.Float).SetInt(val).Float64()
		return f
	case *big.Float:
		if val.IsInt() {
			if n, acc := val.Int64(); acc == big.Exact {
				return n
			}
		}
		f, _ := val.Float64()
		return f
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Normalize(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Normalize(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = Normalize(elem)
		}
		return out
	default:
		return v
	}
}

// NormalizeScope applies Normalize to every entry of a scope map.
// A nil map yields an empty map.
func NormalizeScope(scope map[string]any) map[string]any {
	out := make(map[string]any, len(scope))
	for k, v := range scope {
		out[k] = Normalize(v)
	}
	return out
}

// Equal compares two values by their canonical encoding, so int(5),
// int64(5) and float64(5) are equal.
func Equal(a, b any) bool {
	ca, errA := MarshalCanonical(a)
	cb, errB := MarshalCanonical(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ca) == string(cb)
}
