package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Error carries per-field messages for a rejected input.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field builds a single-field error.
func Field(name, msg string) error {
	return &Error{Fields: map[string]string{name: msg}}
}

// Checker accumulates field errors; the first message per field wins.
type Checker struct {
	fields map[string]string
}

func (c *Checker) Check(ok bool, field, msg string) {
	if ok {
		return
	}
	if c.fields == nil {
		c.fields = make(map[string]string)
	}
	if _, exists := c.fields[field]; !exists {
		c.fields[field] = msg
	}
}

func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields}
}

// Messages maps a json field name to the message reported when any rule on
// that field fails.
type Messages map[string]string

// Struct runs the `validate` tags of v and records one message per failing
// field. Fields missing from msgs get a generic message.
func (c *Checker) Struct(v any, msgs Messages) {
	err := engine.Struct(v)
	if err == nil {
		return
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		// a non-struct argument is a programming error
		panic(err)
	}
	for _, fe := range fes {
		msg, ok := msgs[fe.Field()]
		if !ok {
			msg = "Invalid " + strings.ReplaceAll(fe.Field(), "_", " ")
		}
		c.Check(false, fe.Field(), msg)
	}
}

const dateLayout = "2006-01-02"

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return NotBlank(fl.Field().String())
	})
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, ok := TimeOfDay(fl.Field().String())
		return ok
	})
	return v
}

// Date reports whether s is a YYYY-MM-DD calendar date.
func Date(s string) bool {
	return engine.Var(s, "datetime="+dateLayout) == nil
}

// TimeOfDay accepts HH:MM or HH:MM:SS and returns the HH:MM:SS form.
func TimeOfDay(s string) (string, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}

func Email(s string) bool {
	return engine.Var(s, "required,email") == nil
}

func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
