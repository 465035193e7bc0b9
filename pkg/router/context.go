package router

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
)

// Param is one extracted path parameter.
type Param struct {
	Name  string
	Value string
}

// Context holds the parameters extracted for one navigation, in declaration
// order. Names are unique within a context.
type Context []Param

// zip pairs parameter names with captured values.
func zip(names, values []string) Context {
	ctx := make(Context, 0, len(names))
	for i, name := range names {
		if i >= len(values) {
			break
		}
		ctx = append(ctx, Param{Name: name, Value: values[i]})
	}
	return ctx
}

// Get returns the value of a parameter, or "" when absent.
func (c Context) Get(name string) string {
	v, _ := c.Lookup(name)
	return v
}

// Lookup returns the value of a parameter and whether it is present.
func (c Context) Lookup(name string) (string, bool) {
	for _, p := range c {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Len returns the number of parameters.
func (c Context) Len() int { return len(c) }

// Names returns the parameter names in order.
func (c Context) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name
	}
	return names
}

// Map returns the parameters as a map.
func (c Context) Map() map[string]string {
	m := make(map[string]string, len(c))
	for _, p := range c {
		m[p.Name] = p.Value
	}
	return m
}

// String formats the context as "{id: 42, slug: hello}".
func (c Context) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range c {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// LogValue renders the context as an ordered slog group.
func (c Context) LogValue() slog.Value {
	attrs := make([]slog.Attr, len(c))
	for i, p := range c {
		attrs[i] = slog.String(p.Name, p.Value)
	}
	return slog.GroupValue(attrs...)
}

// Bind populates a struct with values from the context.
// The target must be a pointer to a struct with `param` tags; fields
// without a matching parameter are left untouched.
//
//	var p struct {
//	    ID   int    `param:"id"`
//	    Slug string `param:"slug"`
//	}
//	err := ctx.Bind(&p)
func (c Context) Bind(target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}

		value, ok := c.Lookup(name)
		if !ok {
			continue
		}

		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		if err := setField(fieldValue, value); err != nil {
			return fmt.Errorf("binding param %q: %w", name, err)
		}
	}

	return nil
}

// setField sets a field value from a string.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
