package languages

import (
	"fmt"
	"sort"
	"strings"
)

type Language struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Voice string `json:"voice"`
}

// UnsupportedLanguageError — код не найден в реестре
type UnsupportedLanguageError struct {
	Code      string
	Supported []string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q, supported languages: %s",
		e.Code, strings.Join(e.Supported, ", "))
}

// Registry is the single source of language codes, display names and voices.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	byCode map[string]Language
	order  []string
}

func NewRegistry(langs ...Language) *Registry {
	r := &Registry{byCode: make(map[string]Language, len(langs))}
	for _, l := range langs {
		if l.Voice == "" {
			l.Voice = l.Code
		}
		if _, dup := r.byCode[l.Code]; !dup {
			r.order = append(r.order, l.Code)
		}
		r.byCode[l.Code] = l
	}
	return r
}

func Default() *Registry {
	return NewRegistry(
		Language{Code: "en", Name: "English", Voice: "en"},
		Language{Code: "es", Name: "Spanish", Voice: "es"},
		Language{Code: "fr", Name: "French", Voice: "fr"},
		Language{Code: "de", Name: "German", Voice: "de"},
		Language{Code: "it", Name: "Italian", Voice: "it"},
		Language{Code: "pt", Name: "Portuguese", Voice: "pt"},
		Language{Code: "ru", Name: "Russian", Voice: "ru"},
		Language{Code: "zh", Name: "Chinese", Voice: "zh-CN"},
		Language{Code: "ja", Name: "Japanese", Voice: "ja"},
		Language{Code: "ar", Name: "Arabic", Voice: "ar"},
	)
}

func (r *Registry) Lookup(code string) (Language, error) {
	l, ok := r.byCode[code]
	if !ok {
		return Language{}, &UnsupportedLanguageError{Code: code, Supported: r.Codes()}
	}
	return l, nil
}

func (r *Registry) Name(code string) (string, error) {
	l, err := r.Lookup(code)
	return l.Name, err
}

func (r *Registry) Voice(code string) (string, error) {
	l, err := r.Lookup(code)
	return l.Voice, err
}

// Validate returns the error for the first code that is not registered.
func (r *Registry) Validate(codes ...string) error {
	for _, c := range codes {
		if _, err := r.Lookup(c); err != nil {
			return err
		}
	}
	return nil
}

// Codes returns the registered codes sorted alphabetically.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.byCode))
	for c := range r.byCode {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Languages returns entries in registration order (UI order).
func (r *Registry) Languages() []Language {
	out := make([]Language, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.byCode[c])
	}
	return out
}
