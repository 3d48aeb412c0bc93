// Package locale resolves the language used for verdict headlines. Advice
// text is not translated.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Key names a translatable string
type Key string

const (
	KeyPrediction         Key = "prediction"
	KeyRisk               Key = "risk_of_diabetes"
	KeyNoRisk             Key = "no_risk_of_diabetes"
	KeyDocumentPrediction Key = "pdf_prediction"
	KeyRiskDetected       Key = "risk_of_diabetes_detected"
	KeyNoRiskDetected     Key = "no_risk_of_diabetes_detected"
	KeyFillOutAllFields   Key = "fill_out_all_fields"
)

// Fallback is used when nothing in the request matches a supported language
const Fallback = "en"

// supported lists the table languages in a stable order
var supported = []string{"en", "ta", "hi", "fr", "te", "ml", "de", "zh"}

// Supported returns the language codes with a string table
func Supported() []string {
	return append([]string(nil), supported...)
}

// Catalog matches requested languages against the string tables
type Catalog struct {
	defaultLang string
	codes       []string
	matcher     language.Matcher
}

// NewCatalog builds a catalog whose unmatched requests resolve to defaultLang
func NewCatalog(defaultLang string) (*Catalog, error) {
	if defaultLang == "" {
		defaultLang = Fallback
	}
	if _, ok := tables[defaultLang]; !ok {
		return nil, fmt.Errorf("unsupported default locale %q (supported: %s)", defaultLang, strings.Join(supported, ", "))
	}

	// the matcher falls back to its first tag
	codes := []string{defaultLang}
	for _, code := range supported {
		if code != defaultLang {
			codes = append(codes, code)
		}
	}

	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tags[i] = language.Make(code)
	}

	return &Catalog{
		defaultLang: defaultLang,
		codes:       codes,
		matcher:     language.NewMatcher(tags),
	}, nil
}

// Default returns the catalog's fallback language
func (c *Catalog) Default() string {
	return c.defaultLang
}

// Resolve picks a language from an explicit lang value, then an
// Accept-Language header, then the default.
func (c *Catalog) Resolve(lang, acceptLanguage string) Localizer {
	if lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			if code, ok := c.match(tag); ok {
				return c.localizer(code)
			}
		}
	}

	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if code, ok := c.match(tags...); ok {
				return c.localizer(code)
			}
		}
	}

	return c.localizer(c.defaultLang)
}

func (c *Catalog) match(tags ...language.Tag) (string, bool) {
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	return c.codes[index], true
}

func (c *Catalog) localizer(code string) Localizer {
	return Localizer{lang: code, table: tables[code]}
}

// Localizer looks up strings for one resolved language
type Localizer struct {
	lang  string
	table map[Key]string
}

// Lang returns the resolved language code
func (l Localizer) Lang() string {
	if l.lang == "" {
		return Fallback
	}
	return l.lang
}

// T returns the string for key, falling back to English and then the key itself
func (l Localizer) T(key Key) string {
	if s, ok := l.table[key]; ok {
		return s
	}
	if s, ok := tables[Fallback][key]; ok {
		return s
	}
	return string(key)
}

// Verdict is the localized headline for an assessment
type Verdict struct {
	Lang    string `json:"lang"`
	Heading string `json:"heading"`
	Message string `json:"message"`
}

// Verdict renders the headline for an assessment. Document assessments use
// the shorter detected/not detected wording.
func (l Localizer) Verdict(document, atRisk bool) Verdict {
	v := Verdict{Lang: l.Lang(), Heading: l.T(KeyPrediction)}

	switch {
	case document && atRisk:
		v.Heading = l.T(KeyDocumentPrediction)
		v.Message = l.T(KeyRiskDetected)
	case document:
		v.Heading = l.T(KeyDocumentPrediction)
		v.Message = l.T(KeyNoRiskDetected)
	case atRisk:
		v.Message = l.T(KeyRisk)
	default:
		v.Message = l.T(KeyNoRisk)
	}

	return v
}
