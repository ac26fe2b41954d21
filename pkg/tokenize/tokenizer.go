// Package tokenize splits raw line text into fields using an
// escaped-list grammar (escape, separator, quote), and caches the
// tokenized result of recently-requested lines with a distance-based
// eviction policy. It mirrors TokenizedFileLines from the original
// implementation this module was distilled from.
package tokenize

import (
	"strings"

	"github.com/user/rowdex/pkg/contract"
)

// tokenizeLine splits line into fields according to p, following the
// same escaped/separator/quote semantics as boost::escaped_list_separator:
//
//   - An escape rune (if set), wherever encountered, causes the next
//     rune to be taken literally rather than interpreted as separator
//     or quote.
//   - A quote rune (if set) toggles "inside quotes" wherever it is
//     encountered and is never itself written to the field; while
//     inside quotes, separators are literal.
//   - A separator rune outside quotes ends the current field.
func tokenizeLine(line string, p contract.TokenizerParams) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false
	escapeNext := false

	for _, ch := range line {
		switch {
		case escapeNext:
			field.WriteRune(ch)
			escapeNext = false
		case p.Escape != 0 && ch == p.Escape:
			escapeNext = true
		case p.Quote != 0 && ch == p.Quote:
			inQuotes = !inQuotes
		case !inQuotes && ch == p.Separator:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}

	fields = append(fields, field.String())
	return fields
}
