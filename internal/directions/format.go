// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package directions

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatDistance renders meters as a short text, e.g. "850 m" or "12.3 km"
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return humanize.SIWithDigits(meters, 1, "m")
}

// FormatDuration renders seconds as hours and minutes, e.g. "1 hour 5 mins"
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0 mins"
	}
	minutes := int(math.Round(seconds / 60))
	if minutes < 1 {
		return "1 min"
	}

	days, minutes := minutes/(60*24), minutes%(60*24)
	hours, minutes := minutes/60, minutes%60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 && days == 0 {
		parts = append(parts, plural(minutes, "min"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
