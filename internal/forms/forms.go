// Package forms validates user input as ordered lists of (field, check) rules.
package forms

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Errors maps a field name to its validation messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Any() bool { return len(e) > 0 }

// First returns the first message recorded for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Invalid is a user-facing validation message. Any other error returned by a
// Check is treated as an infrastructure failure.
type Invalid string

func (i Invalid) Error() string { return string(i) }

type Check func(ctx context.Context) error

type Rule struct {
	Field string
	Check Check
}

// Set is evaluated in order.
type Set []Rule

// Validate runs every rule and returns Errors holding each failing field's
// message. Once a field fails, its later rules are skipped. A non-Invalid
// error aborts validation and is returned as is.
func (s Set) Validate(ctx context.Context) error {
	errs := Errors{}
	for _, rule := range s {
		if _, failed := errs[rule.Field]; failed {
			continue
		}
		err := rule.Check(ctx)
		if err == nil {
			continue
		}
		var inv Invalid
		if !errors.As(err, &inv) {
			return fmt.Errorf("validate %s: %w", rule.Field, err)
		}
		errs.Add(rule.Field, inv.Error())
	}
	if errs.Any() {
		return errs
	}
	return nil
}

func Required(value string) Check {
	return func(context.Context) error {
		if strings.TrimSpace(value) == "" {
			return Invalid("This field is required.")
		}
		return nil
	}
}

func Length(value string, min, max int) Check {
	return func(context.Context) error {
		n := utf8.RuneCountInString(value)
		if n < min || n > max {
			return Invalid(fmt.Sprintf("Field must be between %d and %d characters long.", min, max))
		}
		return nil
	}
}

func MaxLen(value string, max int) Check {
	return func(context.Context) error {
		if utf8.RuneCountInString(value) > max {
			return Invalid(fmt.Sprintf("Field cannot be longer than %d characters.", max))
		}
		return nil
	}
}

func MinLen(value string, min int) Check {
	return func(context.Context) error {
		if utf8.RuneCountInString(value) < min {
			return Invalid(fmt.Sprintf("Field must be at least %d characters long.", min))
		}
		return nil
	}
}

// Email accepts a bare address, without display name or angle brackets.
func Email(value string) Check {
	return func(context.Context) error {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value || addr.Name != "" {
			return Invalid("Invalid email address.")
		}
		return nil
	}
}

func Equal(value, other, otherField string) Check {
	return func(context.Context) error {
		if value != other {
			return Invalid("Field must be equal to " + otherField + ".")
		}
		return nil
	}
}

func ContainsLetter(value string) Check {
	return func(context.Context) error {
		for _, r := range value {
			if unicode.IsLetter(r) {
				return nil
			}
		}
		return Invalid("Field must contain at least one letter.")
	}
}

// Unique fails with msg when taken reports true.
func Unique(taken func(ctx context.Context) (bool, error), msg string) Check {
	return func(ctx context.Context) error {
		t, err := taken(ctx)
		if err != nil {
			return err
		}
		if t {
			return Invalid(msg)
		}
		return nil
	}
}
