package validation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Upload is implemented by uploaded files.
type Upload interface {
	UploadSize() int64
}

// UniqueFunc reports whether value is already taken in the backing store.
type UniqueFunc func(ctx context.Context, value string) (bool, error)

// DateLayouts are the accepted formats of the date rule, tried in order.
var DateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func simple(name string, test func(c Check) bool, message func(attr string) string) Rule {
	return Rule{
		Name:    name,
		test:    func(_ context.Context, c Check) (bool, error) { return test(c), nil },
		message: message,
	}
}

func Required() Rule {
	r := simple("required", func(c Check) bool { return isPresent(c.Value) }, func(attr string) string {
		return fmt.Sprintf("The %s field is required.", attr)
	})
	r.Implicit = true
	return r
}

func String() Rule {
	return simple("string", func(c Check) bool {
		_, ok := c.Value.(string)
		return ok
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be a string.", attr)
	})
}

// Max limits the character length of a string.
func Max(n int) Rule {
	return simple("max", func(c Check) bool {
		s, ok := c.Value.(string)
		return !ok || utf8.RuneCountInString(s) <= n
	}, func(attr string) string {
		return fmt.Sprintf("The %s must not be greater than %d characters.", attr, n)
	})
}

// Min requires a string of at least n characters.
func Min(n int) Rule {
	return simple("min", func(c Check) bool {
		s, ok := c.Value.(string)
		return !ok || utf8.RuneCountInString(s) >= n
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be at least %d characters.", attr, n)
	})
}

func Email() Rule {
	return simple("email", func(c Check) bool {
		s, ok := c.Value.(string)
		return ok && validate.Var(s, "email") == nil
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be a valid email address.", attr)
	})
}

// Confirmed requires <field>_confirmation to equal the field.
func Confirmed() Rule {
	return simple("confirmed", func(c Check) bool {
		other, ok := c.Input.Lookup(c.Field + "_confirmation")
		if !ok {
			return false
		}
		confirmation, ok := other.(string)
		value, isString := c.Value.(string)
		return ok && isString && confirmation == value
	}, func(attr string) string {
		return fmt.Sprintf("The %s confirmation does not match.", attr)
	})
}

func Numeric() Rule {
	return simple("numeric", func(c Check) bool {
		_, ok := toFloat(c.Value)
		return ok
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be a number.", attr)
	})
}

func Integer() Rule {
	return simple("integer", func(c Check) bool {
		switch v := c.Value.(type) {
		case int, int64:
			return true
		case string:
			_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			return err == nil
		}
		return false
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be an integer.", attr)
	})
}

// Gte requires a numeric value greater than or equal to min. Non-numeric
// values are left to the numeric rule.
func Gte(min float64) Rule {
	return simple("gte", func(c Check) bool {
		f, ok := toFloat(c.Value)
		return !ok || f >= min
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be greater than or equal to %s.", attr, strconv.FormatFloat(min, 'f', -1, 64))
	})
}

func File() Rule {
	return simple("file", func(c Check) bool {
		_, ok := c.Value.(Upload)
		return ok
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be a file.", attr)
	})
}

func Date() Rule {
	return simple("date", func(c Check) bool {
		s, ok := c.Value.(string)
		if !ok {
			return false
		}
		_, err := ParseDate(s)
		return err == nil
	}, func(attr string) string {
		return fmt.Sprintf("The %s is not a valid date.", attr)
	})
}

// JSON requires a string holding a valid JSON document.
func JSON() Rule {
	return simple("json", func(c Check) bool {
		s, ok := c.Value.(string)
		return ok && validate.Var(s, "json") == nil
	}, func(attr string) string {
		return fmt.Sprintf("The %s must be a valid JSON string.", attr)
	})
}

// Unique fails when exists reports the value as taken.
func Unique(exists UniqueFunc) Rule {
	return Rule{
		Name: "unique",
		test: func(ctx context.Context, c Check) (bool, error) {
			s, ok := c.Value.(string)
			if !ok {
				return true, nil
			}
			taken, err := exists(ctx, s)
			if err != nil {
				return false, err
			}
			return !taken, nil
		},
		message: func(attr string) string {
			return fmt.Sprintf("The %s has already been taken.", attr)
		},
	}
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, time.UTC)
}

// ParseDateIn is ParseDate with zoneless values read in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range DateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if validate.Var(s, "numeric") != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
