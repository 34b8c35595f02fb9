// Package translate formats user visible messages for the current locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FALLBACK is the locale used when none can be detected.
const FALLBACK = "en-US"

var printer *message.Printer
var tag language.Tag

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("regvm: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{FALLBACK}
	}

	tag = message.MatchLanguage(locales...)
	printer = message.NewPrinter(tag)
}

// Language returns the language messages are formatted for.
func Language() language.Tag {
	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
