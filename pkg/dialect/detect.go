// Package dialect guesses the separator and quote rune a delimited
// text file uses, from its first non-empty line. It is a direct port
// of detectSeparatorAndQuote from the original implementation this
// module was distilled from.
package dialect

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/user/rowdex/pkg/contract"
)

// Result is a detected (or undetected) dialect. A zero rune means
// detection did not find that field.
type Result struct {
	Separator rune
	Quote     rune
}

// candidateSeparators is the set of separators looked for when no tab
// is present: if two or more distinct members appear in the line, the
// separator is ambiguous and left undetected.
var candidateSeparators = map[rune]bool{'|': true, ';': true, ',': true}

// Detect reads the first non-empty line of the file at path and
// guesses its separator and quote rune. A line that is empty (or a
// file with no non-empty line) is the agreed convention for an empty
// file: separator = ',', quote = none.
//
// A missing file returns contract.ErrFileMissing; any other open or
// scan failure returns contract.ErrOpenFailed or a
// *contract.ReadFailedError, so callers can use errors.Is against the
// same taxonomy LineIndex.Open uses.
//
// Separator detection order: a literal tab wins outright; otherwise
// the line is scanned for '|', ',', ';' — the first one seen is the
// candidate, but if a different one of the three also appears the
// result is ambiguous and both fields are left zero; failing that, a
// literal space is used if present.
//
// Quote detection: if the line starts or ends with '"', the quote is
// '"'; else if it starts or ends with '\'', the quote is '\''; else,
// if a separator was chosen, a bigraph scan against it decides
// between the two; else the quote is left undetected.
func Detect(path string) (Result, error) {
	line, err := firstNonEmptyLine(path)
	if err != nil {
		return Result{}, err
	}

	if line == "" {
		return Result{Separator: ',', Quote: 0}, nil
	}

	separator, ambiguous := detectSeparator(line)
	if ambiguous {
		return Result{}, nil
	}

	return Result{Separator: separator, Quote: detectQuote(line, separator)}, nil
}

func firstNonEmptyLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", contract.ErrFileMissing
		}
		return "", fmt.Errorf("%w: %v", contract.ErrOpenFailed, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &contract.ReadFailedError{Line: lineNum, Column: 1, Err: err}
	}
	return "", nil
}

// detectSeparator returns the detected separator and whether two or
// more distinct candidates among '|', ',', ';' made the choice
// ambiguous.
func detectSeparator(line string) (rune, bool) {
	if strings.ContainsRune(line, '\t') {
		return '\t', false
	}

	var found rune
	for _, ch := range line {
		if !candidateSeparators[ch] {
			continue
		}
		if found == 0 {
			found = ch
		} else if found != ch {
			return 0, true
		}
	}
	if found != 0 {
		return found, false
	}

	if strings.ContainsRune(line, ' ') {
		return ' ', false
	}
	return 0, false
}

// detectQuote checks the prefix/suffix rules first, then falls back
// to a bigraph scan against separator if one was chosen: both
// `sep"` and `"sep` present selects '"'; failing that, the same test
// with '\''.
func detectQuote(line string, separator rune) rune {
	runes := []rune(line)
	if len(runes) == 0 {
		return 0
	}
	first, last := runes[0], runes[len(runes)-1]

	if first == '"' || last == '"' {
		return '"'
	}
	if first == '\'' || last == '\'' {
		return '\''
	}

	if separator != 0 {
		if hasBigraphs(line, separator, '"') {
			return '"'
		}
		if hasBigraphs(line, separator, '\'') {
			return '\''
		}
	}

	return 0
}

func hasBigraphs(line string, separator, quote rune) bool {
	sepQuote := string(separator) + string(quote)
	quoteSep := string(quote) + string(separator)
	return strings.Contains(line, sepQuote) && strings.Contains(line, quoteSep)
}
