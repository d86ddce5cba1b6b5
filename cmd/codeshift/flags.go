package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ZaguanLabs/codeshift"
)

// languageValue is a pflag.Value accepting language names and aliases.
type languageValue struct {
	lang *codeshift.Language
}

func newLanguageValue(p *codeshift.Language) *languageValue {
	return &languageValue{lang: p}
}

func (v *languageValue) String() string {
	if v.lang == nil {
		return ""
	}
	return string(*v.lang)
}

func (v *languageValue) Set(s string) error {
	l, err := codeshift.ParseLanguage(s)
	if err != nil {
		return err
	}
	*v.lang = l
	return nil
}

func (v *languageValue) Type() string {
	return "language"
}

// languageList collects repeated or comma-separated languages.
type languageList struct {
	langs *[]codeshift.Language
}

func newLanguageList(p *[]codeshift.Language) *languageList {
	return &languageList{langs: p}
}

func (v *languageList) String() string {
	if v.langs == nil {
		return ""
	}
	names := make([]string, len(*v.langs))
	for i, l := range *v.langs {
		names[i] = string(l)
	}
	return strings.Join(names, ",")
}

func (v *languageList) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		l, err := codeshift.ParseLanguage(part)
		if err != nil {
			return err
		}
		*v.langs = append(*v.langs, l)
	}
	return nil
}

func (v *languageList) Type() string {
	return "languages"
}

// modeValue is a pflag.Value restricted to the engine modes.
type modeValue struct {
	mode *codeshift.Mode
}

func (v *modeValue) String() string {
	if v.mode == nil {
		return ""
	}
	return string(*v.mode)
}

func (v *modeValue) Set(s string) error {
	m := codeshift.Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return fmt.Errorf("invalid mode %q (want one of %v)", s, codeshift.Modes)
	}
	*v.mode = m
	return nil
}

func (v *modeValue) Type() string {
	return "mode"
}

var (
	_ pflag.Value = (*languageValue)(nil)
	_ pflag.Value = (*languageList)(nil)
	_ pflag.Value = (*modeValue)(nil)
)
