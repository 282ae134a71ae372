// Package validate checks request structs against `validate` struct tags.
//
// Rules (comma-separated):
//
//	required         field must not be zero/empty (nil pointer counts as empty)
//	nullable         if empty, skip the remaining rules for this field
//	email            valid email address
//	date             YYYY-MM-DD or RFC 3339
//	min=N / max=N    string: rune length | number: value
//	gt=N / gte=N     number > N / number >= N
//	lte=N            number <= N
//	decimals=N       at most N digits after the decimal point
//	in=a,b,c         value must be one of the listed items
//
// Numbers are compared exactly with shopspring/decimal, so money fields of
// type decimal.Decimal validate without float rounding:
//
//	type ProductInput struct {
//	    Name  string          `json:"name"  validate:"required,max=200"`
//	    Price decimal.Decimal `json:"price" validate:"gte=0,decimals=2"`
//	    Role  string          `json:"role"  validate:"required,in=admin,cashier"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of json field name → message; an empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := jsonFieldName(field)
		rules := splitRules(tag)

		if isEmpty(value) && !hasRule(rules, "required") {
			// Optional fields only validate when present.
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	v = deref(v)

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(asString(v)) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}

	case "date":
		if _, err := ParseDate(asString(v)); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", field)
		}

	case "min", "max":
		limit := mustDecimal(param)
		if n, ok := asDecimal(v); ok {
			if key == "min" && n.LessThan(limit) {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
			if key == "max" && n.GreaterThan(limit) {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
			return ""
		}
		l := decimal.NewFromInt(int64(len([]rune(asString(v)))))
		if key == "min" && l.LessThan(limit) {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		if key == "max" && l.GreaterThan(limit) {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}

	case "gt", "gte", "lte":
		n, ok := asDecimal(v)
		if !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
		limit := mustDecimal(param)
		switch {
		case key == "gt" && !n.GreaterThan(limit):
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		case key == "gte" && n.LessThan(limit):
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		case key == "lte" && n.GreaterThan(limit):
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}

	case "decimals":
		n, ok := asDecimal(v)
		if !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
		places := mustDecimal(param).IntPart()
		if !n.Equal(n.Truncate(int32(places))) {
			return fmt.Sprintf("The %s may have at most %s decimal places.", field, param)
		}

	case "in":
		raw := asString(v)
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}

	return ""
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as date", s)
}

var (
	emailRE     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	// bool and structs such as decimal.Decimal: zero is a real value.
	return false
}

func asString(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func asDecimal(v reflect.Value) (decimal.Decimal, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromInt(int64(v.Uint())), true
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(v.Float()), true
	case reflect.Struct:
		if v.Type() == decimalType {
			return v.Interface().(decimal.Decimal), true
		}
	}
	return decimal.Decimal{}, false
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits a tag on commas, keeping the values of a trailing
// `in=` list together: "required,in=admin,cashier" → ["required", "in=admin,cashier"].
func splitRules(tag string) []string {
	parts := strings.Split(tag, ",")
	rules := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		p := strings.TrimSpace(parts[i])
		if strings.HasPrefix(p, "in=") {
			vals := []string{strings.TrimPrefix(p, "in=")}
			for i+1 < len(parts) && !isRuleKeyword(parts[i+1]) {
				i++
				vals = append(vals, strings.TrimSpace(parts[i]))
			}
			p = "in=" + strings.Join(vals, ",")
		}
		rules = append(rules, p)
	}
	return rules
}

func isRuleKeyword(s string) bool {
	key, _, _ := strings.Cut(strings.TrimSpace(s), "=")
	switch key {
	case "required", "nullable", "email", "date", "min", "max", "gt", "gte", "lte", "decimals", "in":
		return true
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
