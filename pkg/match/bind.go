package match

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/waypoint/internal/errors"
)

// TagName is the struct tag read by Struct.
const TagName = "route"

type field struct {
	index int
	key   string
}

// Struct binds a Params matcher to the struct type T.
//
// Every exported field of T is bound under its `route:"name"` tag, or its
// lowercased name when untagged; `route:"-"` skips the field. Supported
// field kinds are string, bool, and the integer and float kinds.
//
// Struct panics if T is not a struct, a field has an unsupported kind, or
// the bound names differ from the captures of m. A capture that does not
// convert to its field's kind is a non-match.
func Struct[T any](m Matcher[Params]) Matcher[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("match: Struct[%s]: not a struct type", t))
	}

	fields := structFields(t)
	checkBinding(t, fields, m)

	parse := ParserFunc[T](func(parts []string) (T, []string, error) {
		var out T
		params, rest, err := m.Parse(parts)
		if err != nil {
			return out, nil, ErrNoMatch
		}
		v := reflect.ValueOf(&out).Elem()
		for _, f := range fields {
			if err := setFieldValue(v.Field(f.index), params[f.key]); err != nil {
				return out, nil, ErrNoMatch
			}
		}
		return out, rest, nil
	})

	format := FormatterFunc[T](func(value T) []string {
		v := reflect.ValueOf(value)
		params := make(Params, len(fields))
		for _, f := range fields {
			params[f.key] = formatValue(v.Field(f.index))
		}
		return m.Format(params)
	})

	return bound[T](m, parse, format)
}

func structFields(t reflect.Type) []field {
	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := sf.Tag.Get(TagName)
		if key == "" {
			key = strings.ToLower(sf.Name)
		}
		if key == "-" {
			continue
		}
		if !supportedKind(sf.Type.Kind()) {
			panic(fmt.Sprintf("match: Struct[%s]: field %s has unsupported kind %s", t, sf.Name, sf.Type.Kind()))
		}
		out = append(out, field{index: i, key: key})
	}
	return out
}

func checkBinding(t reflect.Type, fields []field, m Matcher[Params]) {
	p, ok := m.(Path)
	if !ok || p.opaque {
		// Captures of foreign matchers are unknown; the conversion in
		// parse still rejects missing values of non-string kinds.
		return
	}

	var want []string
	for _, f := range fields {
		want = append(want, f.key)
	}
	got := p.Keys()
	sort.Strings(want)
	sort.Strings(got)

	if strings.Join(want, ",") != strings.Join(got, ",") {
		panic(errors.New(errors.CodeBindingMismatch).WithDetail(
			"%s binds [%s] but %s captures [%s]", t, strings.Join(want, ", "), p, strings.Join(got, ", ")))
	}
}

func supportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func setFieldValue(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("unsupported kind %s", v.Kind())
	}
	return nil
}
