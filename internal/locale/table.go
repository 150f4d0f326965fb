// Package locale holds the translation table and applies the active
// language to the document.
package locale

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	perrors "portfolio/internal/errors"

	"golang.org/x/text/language"
)

// Language is a supported UI language code.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
	LanguagePersian Language = "fa"

	// Default backs every missing key and locale.
	Default = LanguageEnglish
)

// Supported lists the languages in switcher order.
var Supported = []Language{LanguageEnglish, LanguageRussian, LanguagePersian}

// Normalize maps a user supplied code (any case, with or without region)
// to a supported language.
func Normalize(code string) (Language, bool) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	candidate := Language(base.String())
	for _, l := range Supported {
		if l == candidate {
			return l, true
		}
	}
	return "", false
}

// NormalizeOrDefault coerces anything unsupported to Default.
func NormalizeOrDefault(code string) Language {
	if l, ok := Normalize(code); ok {
		return l
	}
	return Default
}

// Direction is "rtl" for right-to-left scripts.
func Direction(l Language) string {
	if l == LanguagePersian {
		return "rtl"
	}
	return "ltr"
}

// Table maps a language to its flat dot-keyed strings. The Default table is
// always present.
type Table map[Language]map[string]string

// EmptyTable is the fallback used when translations cannot be loaded.
func EmptyTable() Table {
	return Table{Default: map[string]string{}}
}

// DecodeTable parses the translations resource. Unsupported locales and
// non-string values are dropped.
func DecodeTable(data []byte) (Table, error) {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrMalformedTranslations, err)
	}
	table := EmptyTable()
	for code, entries := range raw {
		lang, ok := Normalize(code)
		if !ok {
			continue
		}
		dict := table[lang]
		if dict == nil {
			dict = make(map[string]string, len(entries))
			table[lang] = dict
		}
		for key, value := range entries {
			switch v := value.(type) {
			case string:
				dict[key] = v
			case float64:
				dict[key] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	return table, nil
}

// Resolve returns the lang value, else the Default value, else "".
func (t Table) Resolve(lang Language, key string) string {
	if dict, ok := t[lang]; ok {
		if v, ok := dict[key]; ok && v != "" {
			return v
		}
	}
	if dict, ok := t[Default]; ok {
		if v, ok := dict[key]; ok {
			return v
		}
	}
	return ""
}

// Format substitutes {name} placeholders.
func Format(template string, args map[string]string) string {
	if template == "" || len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
