package forms

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

const MaxPostBody = 140

type Post struct {
	Body     string `json:"body"`
	Language string `json:"language,omitempty"`
}

// Validate checks the body and normalizes Language to a base language code.
// When no language is given it is taken from acceptLanguage, and left empty
// if that is missing or unparseable.
func (f *Post) Validate(ctx context.Context, acceptLanguage string) error {
	f.Body = strings.TrimSpace(f.Body)
	f.Language = strings.TrimSpace(f.Language)

	set := Set{
		{"body", Required(f.Body)},
		{"body", Length(f.Body, 1, MaxPostBody)},
	}
	if f.Language != "" {
		set = append(set, Rule{"language", func(context.Context) error {
			base, ok := BaseLanguage(f.Language)
			if !ok {
				return Invalid("Unknown language.")
			}
			f.Language = base
			return nil
		}})
	}
	if err := set.Validate(ctx); err != nil {
		return err
	}

	if f.Language == "" {
		f.Language = DetectLanguage(acceptLanguage)
	}
	return nil
}

// BaseLanguage reduces a BCP 47 tag such as "en-GB" to its base, "en".
func BaseLanguage(tag string) (string, bool) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, conf := t.Base()
	if conf == language.No || base.String() == "und" {
		return "", false
	}
	return base.String(), true
}

// DetectLanguage returns the base of the preferred language in an
// Accept-Language header, or "" when there is none.
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, ok := BaseLanguage(tags[0].String())
	if !ok {
		return ""
	}
	return base
}
