package cmdparse

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/huandu/xstrings"
)

// FromStruct builds parameters from the exported fields of the struct that
// target points to, binding each field as its parameter's Target so a
// successful parse fills the struct. Field names become parameter names in
// snake_case, so the derived long form is the kebab-case of the field name.
//
// Struct tags shape each parameter:
//
//	arg       "positional" for a Positional, "counter" for a Counter,
//	          "-" to skip the field
//	short     a short option form, with or without the dash
//	long      an extra explicit long form
//	help      help text
//	nargs     an arity spec accepted by ParseNargs ("3", "+", "1..3")
//	default   the default value, cast the way a CLI value would be
//	env       comma-separated environment variable names
//	choices   comma-separated acceptable values
//	required  "true" to require the parameter
//
// Bool fields become TriFlags with a --no- prefixed negative form. Slice
// fields accept one or more values unless a nargs tag says otherwise. Int,
// float64 and bool values are cast while parsing; other field types are cast
// when the parsed value is unmarshalled into the field.
func FromStruct(target interface{}) []*Param {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		panic(defErr("FromStruct requires a pointer to a struct, got %T", target))
	}
	value = value.Elem()
	typ := value.Type()
	params := make([]*Param, 0, value.NumField())
	for i := 0; i < value.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("arg") == "-" {
			continue
		}
		params = append(params, paramFromField(field, value.Field(i).Addr().Interface()))
	}
	return params
}

func paramFromField(field reflect.StructField, fieldPtr interface{}) *Param {
	name := xstrings.ToSnakeCase(field.Name)
	argTag := field.Tag.Get("arg")
	isCounter := argTag == "counter"
	isFlag := field.Type.Kind() == reflect.Bool && argTag != "positional"

	opts := []ParamOpt{Target(fieldPtr)}
	if help := field.Tag.Get("help"); help != "" {
		opts = append(opts, Help(help))
	}
	if short := field.Tag.Get("short"); short != "" {
		if !strings.HasPrefix(short, "-") {
			short = "-" + short
		}
		opts = append(opts, Short(short))
	}
	if long := field.Tag.Get("long"); long != "" {
		if !strings.HasPrefix(long, "--") {
			long = "--" + long
		}
		opts = append(opts, Long(long))
	}
	if env := field.Tag.Get("env"); env != "" {
		opts = append(opts, Env(strings.Split(env, ",")...))
	}
	if field.Tag.Get("required") == "true" {
		opts = append(opts, Required(true))
	}

	if isCounter {
		if field.Type.Kind() != reflect.Int {
			panic(defErr("field %s: a counter requires an int field", field.Name))
		}
		return Counter(name, opts...)
	}
	if isFlag {
		if def := field.Tag.Get("default"); def != "" {
			opts = append(opts, Default(castTag(field, def, ToBool)))
		}
		return TriFlag(name, opts...)
	}

	if choices := field.Tag.Get("choices"); choices != "" {
		opts = append(opts, Choices(strings.Split(choices, ",")...))
	}
	convert := fieldConvert(field.Type)
	if convert != nil {
		opts = append(opts, Convert(convert))
	}
	if tag := field.Tag.Get("nargs"); tag != "" {
		n, err := ParseNargs(tag)
		if err != nil {
			panic(defErr("field %s: %v", field.Name, err))
		}
		opts = append(opts, Arity(n))
	} else if field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() != reflect.Uint8 {
		opts = append(opts, Arity(NargsRange(1, Unbounded)))
	}
	if def := field.Tag.Get("default"); def != "" {
		opts = append(opts, Default(castTag(field, def, convert)))
	}
	if argTag == "positional" {
		return Positional(name, opts...)
	}
	return Option(name, opts...)
}

// fieldConvert picks the parse-time cast for directly castable field kinds.
// time.Duration and encoding.TextUnmarshaler fields stay uncast here; the
// target unmarshaller handles them.
func fieldConvert(t reflect.Type) func(string) (interface{}, error) {
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t == reflect.TypeOf(int(0)) {
		return ToInt
	}
	switch t.Kind() {
	case reflect.Float64:
		return ToFloat
	case reflect.Bool:
		return ToBool
	}
	return nil
}

func castTag(field reflect.StructField, raw string, convert func(string) (interface{}, error)) interface{} {
	if convert == nil {
		return raw
	}
	v, err := convert(raw)
	if err != nil {
		panic(defErr("field %s: invalid default %s: %v", field.Name, strconv.Quote(raw), err))
	}
	return v
}
