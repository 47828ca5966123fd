package cache

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer implements KeySerializer using reflection-based serialization.
// Maps and structs share one sorted {name=value} form so that field order and
// representation do not leak into keys. Absent values (nil, empty strings, zero
// omitempty fields) are dropped instead of rendered. String values are
// query-escaped, so they can never contain the separator or the punctuation of
// the {name=value} and [a,b] forms.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from a resource name and args.
// Args that serialize to nothing (nil, empty filter objects) are skipped, so
// List(nil), List(Filters{}) and List() share a key.
func (s *defaultKeySerializer) SerializeKey(resource string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, resource)

	for _, arg := range args {
		serialized, ok := s.serializeValue(reflect.ValueOf(arg))
		if !ok || serialized == "{}" {
			continue
		}
		parts = append(parts, serialized)
	}

	return strings.Join(parts, KeySeparator)
}

// serializeValue renders v. The boolean is false when v counts as absent.
func (s *defaultKeySerializer) serializeValue(rv reflect.Value) (string, bool) {
	if !rv.IsValid() {
		return "", false
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}
		if str, ok := asStringer(rv); ok {
			return escapeLeaf(str), true
		}
		return s.serializeValue(rv.Elem())
	case reflect.Func:
		if rv.IsNil() {
			return "", false
		}
		return fmt.Sprintf("func:%p", rv.Interface()), true
	case reflect.Chan:
		if rv.IsNil() {
			return "", false
		}
		return fmt.Sprintf("chan:%p", rv.Interface()), true
	case reflect.Slice:
		if rv.IsNil() {
			return "", false
		}
		return s.serializeList(rv), true
	case reflect.Array:
		return s.serializeList(rv), true
	case reflect.Map:
		if rv.IsNil() {
			return "", false
		}
		return s.serializeMap(rv), true
	case reflect.Struct:
		if str, ok := asStringer(rv); ok {
			return escapeLeaf(str), true
		}
		return s.serializeStruct(rv), true
	case reflect.String:
		if rv.Len() == 0 {
			return "", false
		}
		return escapeLeaf(rv.String()), true
	}

	if s.isBasicType(rv.Kind()) {
		return fmt.Sprintf("%v", rv.Interface()), true
	}

	return s.jsonFallback(rv), true
}

// serializeList keeps element order; positions are meaningful in lists.
func (s *defaultKeySerializer) serializeList(rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)

	for i := 0; i < length; i++ {
		str, ok := s.serializeValue(rv.Index(i))
		if !ok {
			str = "nil"
		}
		parts[i] = str
	}

	return "[" + strings.Join(parts, ",") + "]"
}

func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	pairs := make(map[string]string, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		name, ok := s.serializeValue(iter.Key())
		if !ok {
			continue
		}
		value, ok := s.serializeValue(iter.Value())
		if !ok {
			continue
		}
		pairs[name] = value
	}

	return joinPairs(pairs)
}

func (s *defaultKeySerializer) serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	pairs := make(map[string]string, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := fieldName(field)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}

		value, ok := s.serializeValue(fv)
		if !ok {
			continue
		}
		pairs[name] = value
	}

	return joinPairs(pairs)
}

// fieldName resolves the key name for a struct field from its json tag.
func fieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name = field.Name
	if tag == "" {
		return name, false, false
	}

	opts := strings.Split(tag, ",")
	if opts[0] != "" {
		name = opts[0]
	}
	for _, opt := range opts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func joinPairs(pairs map[string]string) string {
	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + pairs[name]
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func asStringer(rv reflect.Value) (string, bool) {
	if !rv.CanInterface() {
		return "", false
	}
	if str, ok := rv.Interface().(fmt.Stringer); ok {
		return str.String(), true
	}
	return "", false
}

// isBasicType checks if a kind represents a basic Go type
func (s *defaultKeySerializer) isBasicType(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// jsonFallback provides JSON serialization as a last resort
func (s *defaultKeySerializer) jsonFallback(rv reflect.Value) string {
	if !rv.CanInterface() {
		return "fallback:" + rv.Type().String()
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return "fallback:" + rv.Type().String()
	}
	return "json:" + escapeLeaf(string(data))
}

func escapeLeaf(s string) string {
	return url.QueryEscape(s)
}
