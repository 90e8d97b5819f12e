package form

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrTopLevelScalar  = errors.New("form: top-level parameters must be a struct or a map")
	ErrUnsupportedType = errors.New("form: unsupported parameter type")
	ErrTooDeep         = errors.New("form: parameters are nested too deeply")
)

var (
	timeType  = reflect.TypeFor[time.Time]()
	emptyType = reflect.TypeFor[struct{}]()
)

// Encode flattens v into ordered form pairs. v must be a struct, a map, a
// *Map, or a pointer to one of those; a nil v encodes to no pairs.
func Encode(v any) (Pairs, error) {
	if v == nil {
		return nil, nil
	}

	enc := &encoder{}

	err := enc.encode("", reflect.ValueOf(v), 0)
	if err != nil {
		return nil, err
	}

	return enc.pairs, nil
}

type encoder struct {
	pairs Pairs
}

func (e *encoder) add(key, value string) error {
	if key == "" {
		return ErrTopLevelScalar
	}

	e.pairs = append(e.pairs, Pair{Key: key, Value: value})

	return nil
}

func childKey(parent, sub string) string {
	if parent == "" {
		return sub
	}

	return parent + "[" + sub + "]"
}

//nolint:cyclop // one switch over reflect kinds reads better than a dispatch table
func (e *encoder) encode(key string, value reflect.Value, depth int) error {
	if depth > constants.MaxFormDepth {
		return fmt.Errorf("%w at %q", ErrTooDeep, key)
	}

	value, done, err := e.resolve(key, value, depth)
	if err != nil || done {
		return err
	}

	switch value.Kind() {
	case reflect.String:
		return e.add(key, value.String())
	case reflect.Bool:
		return e.add(key, strconv.FormatBool(value.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.add(key, strconv.FormatInt(value.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.add(key, strconv.FormatUint(value.Uint(), 10))
	case reflect.Float32:
		return e.add(key, strconv.FormatFloat(value.Float(), 'f', -1, 32))
	case reflect.Float64:
		return e.add(key, strconv.FormatFloat(value.Float(), 'f', -1, 64))
	case reflect.Struct:
		return e.encodeStruct(key, value, depth)
	case reflect.Map:
		if value.Type().Elem() == emptyType {
			return e.encodeSet(key, value, depth)
		}

		return e.encodeMap(key, value, depth)
	case reflect.Slice, reflect.Array:
		return e.encodeSequence(key, value, depth)
	default:
		return fmt.Errorf("%w: %s at %q", ErrUnsupportedType, value.Type(), key)
	}
}

// resolve strips pointers and interfaces and handles the types with their own
// encoding. done is true when nothing is left to encode.
func (e *encoder) resolve(key string, value reflect.Value, depth int) (reflect.Value, bool, error) {
	for hops := 0; ; hops++ {
		if hops > constants.MaxFormDepth {
			return value, true, fmt.Errorf("%w at %q", ErrTooDeep, key)
		}

		if !value.IsValid() {
			return value, true, nil
		}

		kind := value.Kind()
		if (kind == reflect.Pointer || kind == reflect.Interface) && value.IsNil() {
			return value, true, nil
		}

		if value.CanInterface() {
			switch typed := value.Interface().(type) {
			case *Map:
				return value, true, e.encodeOrdered(key, typed, depth)
			case Map:
				return value, true, e.encodeOrdered(key, &typed, depth)
			case nullable:
				inner, present, null := typed.formValue()
				if !present {
					return value, true, nil
				}

				if null {
					return value, true, e.add(key, "")
				}

				value = reflect.ValueOf(inner)

				continue
			case OneOf:
				value = reflect.ValueOf(typed.OneOfValue())

				continue
			case time.Time:
				return value, true, e.add(key, strconv.FormatInt(typed.Unix(), 10))
			}
		}

		if kind == reflect.Pointer || kind == reflect.Interface {
			value = value.Elem()

			continue
		}

		return value, false, nil
	}
}

func (e *encoder) encodeOrdered(key string, values *Map, depth int) error {
	for _, sub := range values.keys {
		err := e.encode(childKey(key, sub), reflect.ValueOf(values.values[sub]), depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) encodeStruct(key string, value reflect.Value, depth int) error {
	for _, field := range structFields(value.Type()) {
		fieldValue, err := value.FieldByIndexErr(field.index)
		if err != nil {
			// nil embedded pointer
			continue
		}

		if field.omitEmpty && fieldValue.IsZero() {
			continue
		}

		err = e.encode(childKey(key, field.name), fieldValue, depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) encodeMap(key string, value reflect.Value, depth int) error {
	type entry struct {
		key   string
		value reflect.Value
	}

	entries := make([]entry, 0, value.Len())

	iter := value.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: scalarString(iter.Key()), value: iter.Value()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	for _, item := range entries {
		err := e.encode(childKey(key, item.key), item.value, depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) encodeSet(key string, value reflect.Value, depth int) error {
	if key == "" {
		return ErrTopLevelScalar
	}

	if value.IsNil() {
		return nil
	}

	members := make([]string, 0, value.Len())
	for _, member := range value.MapKeys() {
		members = append(members, scalarString(member))
	}

	sort.Strings(members)

	if len(members) == 0 {
		return e.add(key+"[]", "")
	}

	for index, member := range members {
		err := e.encode(childKey(key, strconv.Itoa(index)), reflect.ValueOf(member), depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) encodeSequence(key string, value reflect.Value, depth int) error {
	if key == "" {
		return ErrTopLevelScalar
	}

	if value.Kind() == reflect.Slice && value.IsNil() {
		return nil
	}

	if value.Kind() == reflect.Slice && value.Type().Elem().Kind() == reflect.Uint8 {
		return e.add(key, string(value.Bytes()))
	}

	if value.Len() == 0 {
		return e.add(key+"[]", "")
	}

	for index := range value.Len() {
		err := e.encode(childKey(key, strconv.Itoa(index)), value.Index(index), depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}

func scalarString(value reflect.Value) string {
	for value.Kind() == reflect.Interface || value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return ""
		}

		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.String:
		return value.String()
	case reflect.Bool:
		return strconv.FormatBool(value.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(value.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(value.Uint(), 10)
	default:
		if value.Type() == timeType {
			return strconv.FormatInt(value.Interface().(time.Time).Unix(), 10) //nolint:forcetypeassert // checked above
		}

		return fmt.Sprint(value.Interface())
	}
}

type fieldInfo struct {
	name      string
	index     []int
	omitEmpty bool
}

var fieldCache sync.Map // map[reflect.Type][]fieldInfo

func structFields(typ reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(typ); ok {
		return cached.([]fieldInfo) //nolint:forcetypeassert // only fieldInfo slices are stored
	}

	fields := collectFields(typ, nil)
	fieldCache.Store(typ, fields)

	return fields
}

func collectFields(typ reflect.Type, parent []int) []fieldInfo {
	var fields []fieldInfo

	for index := range typ.NumField() {
		field := typ.Field(index)

		tag := field.Tag.Get("form")
		if tag == "-" {
			continue
		}

		name, options, _ := strings.Cut(tag, ",")
		fieldIndex := append(append([]int(nil), parent...), index)

		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}

			if embedded.Kind() == reflect.Struct && embedded != timeType {
				fields = append(fields, collectFields(embedded, fieldIndex)...)

				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		if name == "" {
			name = snakeCase(field.Name)
		}

		fields = append(fields, fieldInfo{
			name:      name,
			index:     fieldIndex,
			omitEmpty: slices.Contains(strings.Split(options, ","), "omitempty"),
		})
	}

	return fields
}

// snakeCase converts a Go identifier such as "CustomerID" to "customer_id".
func snakeCase(name string) string {
	runes := []rune(name)

	var builder strings.Builder

	for index, current := range runes {
		if unicode.IsUpper(current) && index > 0 {
			previous := runes[index-1]
			nextIsLower := index+1 < len(runes) && unicode.IsLower(runes[index+1])

			if unicode.IsLower(previous) || unicode.IsDigit(previous) || (unicode.IsUpper(previous) && nextIsLower) {
				builder.WriteByte('_')
			}
		}

		builder.WriteRune(unicode.ToLower(current))
	}

	return builder.String()
}
