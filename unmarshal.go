package cmdparse

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

// unmarshalInto parses s into the value target points at. Types implementing
// encoding.TextUnmarshaler take precedence, then registered builtin
// unmarshallers, then the basic kinds.
func unmarshalInto(s string, target interface{}) error {
	if tu, ok := target.(encoding.TextUnmarshaler); ok {
		return tu.UnmarshalText([]byte(s))
	}
	if um, ok := builtinUnmarshallers[reflect.TypeOf(target)]; ok {
		return um(s, target)
	}
	value := reflect.ValueOf(target).Elem()
	switch value.Type().Kind() {
	case reflect.String:
		value.SetString(s)
	case reflect.Slice:
		x := reflect.New(value.Type().Elem())
		if err := unmarshalInto(s, x.Interface()); err != nil {
			return fmt.Errorf("unmarshalling in to new element for %v: %w", value.Type(), err)
		}
		value.Set(reflect.Append(value, x.Elem()))
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		value.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, value.Type().Bits())
		if err != nil {
			return err
		}
		value.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, value.Type().Bits())
		if err != nil {
			return err
		}
		value.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, value.Type().Bits())
		if err != nil {
			return err
		}
		value.SetFloat(f)
	default:
		return fmt.Errorf("unhandled target type %v", value.Type())
	}
	return nil
}

// fillTarget copies a parameter's final value into its Target pointer.
// String values go through unmarshalInto so TextUnmarshaler and the builtin
// unmarshallers apply; anything else assigns directly when the types line
// up.
func fillTarget(target interface{}, v interface{}) error {
	if v == nil {
		return nil
	}
	switch tv := v.(type) {
	case string:
		return unmarshalInto(tv, target)
	case []string:
		for _, s := range tv {
			if err := unmarshalInto(s, target); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		for _, el := range tv {
			if err := fillTarget(target, el); err != nil {
				return err
			}
		}
		return nil
	}
	dst := reflect.ValueOf(target).Elem()
	sv := reflect.ValueOf(v)
	switch {
	case sv.Type().AssignableTo(dst.Type()):
		dst.Set(sv)
	case sv.Type().ConvertibleTo(dst.Type()):
		dst.Set(sv.Convert(dst.Type()))
	case dst.Kind() == reflect.Slice && sv.Type().AssignableTo(dst.Type().Elem()):
		dst.Set(reflect.Append(dst, sv))
	default:
		return fmt.Errorf("cannot assign %T to %v", v, dst.Type())
	}
	return nil
}
