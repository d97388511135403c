package termux_installer

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

const (
	DefaultLanguage string = "en"
	displayKey             = "_language_display"
)

type Translator struct {
	language    string
	langStrings map[string]StringMap
	variables   StringMap
}

// NewTranslator returns a Translator for the given language codes without any
// variable lookup.
func NewTranslator(languages []string) *Translator {
	return NewTranslatorVar(StringMap{}, languages)
}

// NewTranslatorVar returns a Translator with a variable lookup. For each language code
// it loads languages/<code>.yml from the resources box. Files that are missing or
// don't parse are logged and skipped. Returns nil if not even the default language
// could be loaded.
func NewTranslatorVar(variables StringMap, languages []string) *Translator {
	langStrings := make(map[string]StringMap)
	for _, languageTag := range languages {
		filename := fmt.Sprintf("languages/%s.yml", languageTag)
		content, err := GetResource(filename)
		if err != nil {
			log.Printf("Missing language file %s\n", filename)
			continue
		}
		strs, err := parseLanguage(content)
		if err != nil {
			log.Printf("Unable to parse language file %s\n", filename)
			continue
		}
		langStrings[languageTag] = strs
	}
	return newTranslator(langStrings, variables)
}

func newTranslator(langStrings map[string]StringMap, variables StringMap) *Translator {
	t := Translator{
		langStrings: langStrings,
		variables:   variables,
	}
	err := t.SetLanguage(t.getLocale())
	if err != nil {
		err = t.SetLanguage(DefaultLanguage)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseLanguage(content string) (StringMap, error) {
	strs := make(StringMap)
	err := yaml.Unmarshal([]byte(content), strs)
	return strs, err
}

// Get returns the localized string for a given string key.
//
// The strings may contain template references to variables, which in turn may contain
// template references back to message strings. Only one round-trip of string ->
// variable -> string lookup is performed.
func (t *Translator) Get(key string) string {
	str := t.getRaw(key, t.language)
	return t.Expand(str)
}

// GetLanguage returns the identifier (e.g. "en") for the current language.
func (t *Translator) GetLanguage() string { return t.language }

// GetLanguageName returns the display name a language gives itself, or the code if
// it has none.
func (t *Translator) GetLanguageName(language string) string {
	if name, ok := t.langStrings[language][displayKey]; ok {
		return name
	}
	return language
}

// GetLanguages returns a list of identifiers for all available languages. The default
// language (if it has strings available) will be the first in the list, the rest is
// sorted alphabetically.
func (t *Translator) GetLanguages() (languages []string) {
	hasDefault := false
	for lang := range t.langStrings {
		if lang != DefaultLanguage {
			languages = append(languages, lang)
		} else {
			hasDefault = true
		}
	}
	sort.Strings(languages)
	if hasDefault {
		languages = append([]string{DefaultLanguage}, languages...)
	}
	return languages
}

// SetLanguage given a language code string (e.g.: "en"), sets the translator's
// language.
func (t *Translator) SetLanguage(language string) (err error) {
	if _, ok := t.langStrings[language]; !ok {
		return errors.New(fmt.Sprintf("No language '%s'.", language))
	}
	t.language = language
	return
}

// SetVariables replaces the variables available to string templates.
func (t *Translator) SetVariables(variables StringMap) { t.variables = variables }

// getLocale returns the current system locale, as a language code string (e.g.:
// "en"), matched against the available languages.
func (t *Translator) getLocale() string {
	languageTags := []language.Tag{language.Raw.Make(DefaultLanguage)}
	for languageTag := range t.langStrings {
		if languageTag != DefaultLanguage && languageTag != "" {
			languageTags = append(languageTags, language.Raw.Make(languageTag))
		}
	}
	locale, _ := jibber_jabber.DetectIETF()
	match, _, _ := language.NewMatcher(languageTags).Match(language.Make(locale))
	base, _ := match.Base()
	return base.String()
}

// Expand expands template variables in the given str (if any) with the translator's
// current language's strings.
func (t *Translator) Expand(str string) (expanded string) { return t.expand(str, t.language) }

// expand expands template variables in the given str (if any) with the translator's
// strings for the given language. If the default language isn't available either,
// an empty string is returned.
func (t *Translator) expand(str, language string) (expanded string) {
	availableLanguage := language
	if _, ok := t.langStrings[language]; !ok {
		availableLanguage = DefaultLanguage
	}
	if _, ok := t.langStrings[DefaultLanguage]; !ok {
		return ""
	}
	variables := make(StringMap)
	for key, value := range t.variables {
		variables[key] = ExpandVariables(value, t.langStrings[availableLanguage])
	}
	return ExpandVariables(str, variables)
}

// getRaw returns a localized string for a given string key in a given language, without
// template expansion. If the language doesn't have the string, then the default
// language is tried. If that fails as well, the key itself is returned so that missing
// strings stay visible.
func (t *Translator) getRaw(key, language string) string {
	if langStrings, ok := t.langStrings[language]; ok {
		if value, ok := langStrings[key]; ok {
			return value
		}
	}
	if langStrings, ok := t.langStrings[DefaultLanguage]; ok {
		if value, ok := langStrings[key]; ok {
			return value
		}
	}
	return key
}
