// Package rowdex provides random-access reading of large delimited
// text files: a background-built sparse line index, a retriever that
// turns a line number into raw text with a bounded number of seeks,
// and a tokenizer cache that turns raw text into fields on demand.
//
// File wires the three together the way the teacher's FileSource
// wires a MappedFile and a LineIndex, exposing one handle a caller
// opens and closes.
package rowdex

import (
	"log/slog"

	"github.com/user/rowdex/pkg/contract"
	"github.com/user/rowdex/pkg/dialect"
	"github.com/user/rowdex/pkg/lineindex"
	"github.com/user/rowdex/pkg/tokenize"
)

// Options configures File at open time.
type Options struct {
	// OnProgress, if set, reports background scan progress.
	OnProgress contract.ProgressFunc

	// Tokenizer seeds the tokenizer parameters. If nil,
	// contract.DefaultTokenizerParams() is used until a caller
	// overrides it or DetectDialect is applied.
	Tokenizer *contract.TokenizerParams

	// CacheCapacity bounds the tokenized-line cache. Zero selects
	// tokenize.DefaultCacheCapacity.
	CacheCapacity int

	// Logger receives scan lifecycle events.
	Logger *slog.Logger

	// MinProbe, MaxSamples, and MaxLines override the corresponding
	// lineindex package defaults when positive. They exist so a
	// loaded config.IndexConfig can reach the background scan.
	MinProbe   int
	MaxSamples int
	MaxLines   int
}

// File is a single opened delimited text file, ready for random-access
// retrieval of raw or tokenized lines while a background scan
// continues to extend the index.
type File struct {
	path   string
	index  *lineindex.LineIndex
	reader *lineindex.LineReader
	tokens *tokenize.TokenizedLines
}

// Open validates path, starts the background index scan, and returns
// a File ready for retrieval. The scan continues asynchronously;
// LineCount grows until ScanFinished reports true.
func Open(path string, opts Options) (*File, error) {
	idx, err := lineindex.Open(path, lineindex.Options{
		OnProgress: opts.OnProgress,
		Logger:     opts.Logger,
		MinProbe:   opts.MinProbe,
		MaxSamples: opts.MaxSamples,
		MaxLines:   opts.MaxLines,
	})
	if err != nil {
		return nil, err
	}

	reader := lineindex.NewReader(idx)
	tokens := tokenize.New(reader, opts.CacheCapacity)
	if opts.Tokenizer != nil {
		if err := tokens.SetTokenizer(*opts.Tokenizer); err != nil {
			idx.Close()
			return nil, err
		}
	}

	return &File{path: path, index: idx, reader: reader, tokens: tokens}, nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// LineCount returns the current lower bound on indexed lines.
func (f *File) LineCount() int { return f.index.LineCount() }

// ScanFinished reports whether the background scan has terminated.
func (f *File) ScanFinished() bool { return f.index.ScanFinished() }

// LimitReached reports whether the scan stopped at its line limit
// (Options.MaxLines when positive, lineindex.MaxLines otherwise).
func (f *File) LimitReached() bool { return f.index.LimitReached() }

// SamplingRatio returns the current sampling ratio R.
func (f *File) SamplingRatio() int { return f.index.SamplingRatio() }

// RequestStop cooperatively cancels the background scan.
func (f *File) RequestStop() { f.index.RequestStop() }

// GetLine returns the raw text of line n.
func (f *File) GetLine(n int) (string, error) { return f.reader.GetLine(n) }

// GetTokenizedLine returns the fields of line n.
func (f *File) GetTokenizedLine(n int) ([]string, error) {
	return f.tokens.GetTokenizedLine(n)
}

// ColumnCount returns the number of fields in line 0, the header.
func (f *File) ColumnCount() (int, error) {
	return f.tokens.ColumnCount(0)
}

// SetTokenizer changes the tokenizer parameters, flushing the
// tokenized-line cache. It rejects a null separator.
func (f *File) SetTokenizer(p contract.TokenizerParams) error { return f.tokens.SetTokenizer(p) }

// DetectDialect inspects the file's first non-empty line and applies
// the detected separator/quote as the tokenizer parameters. A field
// left undetected (zero rune) is not applied, leaving the
// corresponding current parameter unchanged.
func (f *File) DetectDialect() (dialect.Result, error) {
	result, err := dialect.Detect(f.path)
	if err != nil {
		return dialect.Result{}, err
	}

	params := f.tokens.Params()
	if result.Separator != 0 {
		params.Separator = result.Separator
	}
	if result.Quote != 0 {
		params.Quote = result.Quote
	}
	if err := f.tokens.SetTokenizer(params); err != nil {
		return dialect.Result{}, err
	}

	return result, nil
}

// Join waits for the background scan to terminate and returns its
// terminal error, if any.
func (f *File) Join() error { return f.index.Join() }

// Close requests cancellation, joins the scan, and releases the file
// handle. Close must be called exactly once.
func (f *File) Close() error { return f.index.Close() }
