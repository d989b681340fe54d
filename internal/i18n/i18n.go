// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package i18n resolves the language that geocoding results are requested in.
package i18n

import (
	"github.com/Xuanwo/go-locale"
	"golang.org/x/text/language"
)

// Language returns the language tag for loc. An empty or unparsable loc falls back to the
// locale of the environment and finally to English.
func Language(loc string) language.Tag {
	if loc != "" {
		if tag, err := language.Parse(loc); err == nil {
			return tag
		}
	}
	tag, err := locale.Detect()
	if err != nil {
		return language.English // Unable to detect locale, fallback to English
	}
	return tag
}
