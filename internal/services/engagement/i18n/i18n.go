// Package i18n registers every user-facing string the bot posts with the
// x/text message catalog and hands out printers for it.
//
// Keys are stable identifiers; the catalog entries are printf formats. Large
// integers such as user ids must be passed pre-formatted as strings because
// the printer groups digits.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default returns the language the catalog is written in.
func Default() language.Tag {
	return language.English
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// DefaultPrinter returns a printer for the default language.
func DefaultPrinter() *message.Printer {
	return Printer(Default())
}
