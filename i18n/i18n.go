// Package i18n provides localized user-facing messages for codeshift.
//
// It wraps the gotext library with a simple T() function. Catalogs are
// embedded in the binary via //go:embed and selected at startup via Init().
//
// Usage:
//
//	i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T(i18n.MsgConversionCompleted))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/codeshift.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "codeshift"

// po is the gotext locale object used for translations.
var po *gotext.Locale

// Init selects the message catalog. If lang is empty, it auto-detects
// from LANGUAGE, LC_ALL, LC_MESSAGES and LANG (in that order).
//
// Init should be called once at program startup, before any T() calls.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a message. Without a catalog entry the message is returned
// unchanged. Extra arguments are applied with fmt.Sprintf.
func T(msgid string, args ...any) string {
	if po == nil {
		if len(args) > 0 {
			return fmt.Sprintf(msgid, args...)
		}
		return msgid
	}
	return po.Get(msgid, args...)
}

// detectLanguage reads the gettext environment variables.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				val, _, _ = strings.Cut(val, ":")
			}
			// Strip encoding suffix (e.g. "es_ES.UTF-8" -> "es_ES")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
