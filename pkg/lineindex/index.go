// Package lineindex builds a sparse byte-offset index over a large
// delimited text file in the background, and retrieves the raw text of
// any line by number with a bounded number of seeks and sequential
// reads. It implements the LineIndex and LineReader contracts: the
// two are kept in one package because LineReader's sparse retrieval
// path mutates index state (the between-sample offset cache) under the
// same mutex that guards the sample table, exactly as described for
// the original implementation.
package lineindex

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/mmap"
	"golang.org/x/sync/errgroup"

	"github.com/user/rowdex/pkg/contract"
)

// MaxLines is the largest line count the index will track. It is
// chosen to be representable as a signed 32-bit row index for a
// hosting grid widget.
const MaxLines = 1<<31 - 1

// MinProbe is the number of lines read before the sampling ratio is
// chosen from the observed average line length.
const MinProbe = 1000

// MaxSamples bounds the size of the sample table; the sampling ratio
// is chosen so the table holds roughly this many entries.
const MaxSamples = 10000

const scanChunkLines = 1000

// Options configures a LineIndex at construction time.
type Options struct {
	// OnProgress, if set, is called from the scanning goroutine when
	// 500ms have passed since the last call, or when at least 50 more
	// lines have been read and the percent has changed since the last
	// call. The final call is always (finalLineCount, 100).
	OnProgress contract.ProgressFunc

	// IsCancelled, if set, is polled roughly every 100ms by the
	// scanning goroutine in addition to the index's own
	// RequestStop/cancellation plumbing. It lets an external capability
	// (a GUI's cancel button, say) cooperate with cancellation without
	// the index needing to know anything about where that capability
	// comes from.
	IsCancelled func() bool

	// Logger receives scan lifecycle events. A nil Logger discards them.
	Logger *slog.Logger

	// MinProbe, MaxSamples, and MaxLines override the package defaults
	// of the same name (index.go's MinProbe/MaxSamples/MaxLines
	// constants) when positive, letting a caller apply
	// config.IndexConfig without recompiling. Zero or negative selects
	// the package default.
	MinProbe   int
	MaxSamples int
	MaxLines   int
}

// LineIndex is a sparse byte-offset sample table over a file, built by
// a background scan that can be cancelled. It is single-owner and
// non-copyable: it holds a file handle, a mutex, and a joinable
// goroutine, so callers must hold it behind a stable pointer and call
// Close exactly once when done.
type LineIndex struct {
	path     string
	file     *mmap.ReaderAt
	fileSize int64
	logger   *slog.Logger

	minProbe   int
	maxSamples int
	maxLines   int

	mu           sync.Mutex
	offsets      []int64
	ratio        int
	between      []int64
	activeSample int

	totalLines    atomic.Int64
	stopRequested atomic.Bool
	limitReached  atomic.Bool
	scanFinished  atomic.Bool

	onProgress  contract.ProgressFunc
	isCancelled func() bool

	cancel context.CancelFunc
	group  *errgroup.Group
}

// Open validates the path, memory-maps it for retrieval, and spawns
// the background scan. The scan is already running when Open returns.
func Open(path string, opts Options) (*LineIndex, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, contract.ErrFileMissing
		}
		return nil, fmt.Errorf("rowdex: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, contract.ErrNotRegular
	}
	if info.Size() == 0 {
		return nil, contract.ErrEmptyFile
	}

	file, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrOpenFailed, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(discardHandler{})
	}

	minProbe, maxSamples, maxLines := MinProbe, MaxSamples, MaxLines
	if opts.MinProbe > 0 {
		minProbe = opts.MinProbe
	}
	if opts.MaxSamples > 0 {
		maxSamples = opts.MaxSamples
	}
	if opts.MaxLines > 0 {
		maxLines = opts.MaxLines
	}

	idx := &LineIndex{
		path:         path,
		file:         file,
		fileSize:     info.Size(),
		logger:       logger,
		minProbe:     minProbe,
		maxSamples:   maxSamples,
		maxLines:     maxLines,
		ratio:        1,
		activeSample: 0,
		onProgress:   opts.OnProgress,
		isCancelled:  opts.IsCancelled,
	}

	ctx, cancel := context.WithCancel(context.Background())
	idx.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	idx.group = g
	g.Go(func() error {
		return idx.scan(gctx)
	})

	return idx, nil
}

// LineCount returns a lower bound on the number of lines indexed so
// far. It is monotonically non-decreasing and final once ScanFinished
// returns true. Every index less than LineCount is guaranteed
// retrievable via a LineReader bound to this index.
func (idx *LineIndex) LineCount() int { return int(idx.totalLines.Load()) }

// ScanFinished reports whether the background scan has terminated,
// whether by reaching EOF, by cancellation, by hitting MaxLines, or by
// a read error.
func (idx *LineIndex) ScanFinished() bool { return idx.scanFinished.Load() }

// LimitReached reports whether the scan stopped because it reached
// MaxLines.
func (idx *LineIndex) LimitReached() bool { return idx.limitReached.Load() }

// SamplingRatio returns R, the number of lines per sample. It is fixed
// after the probe phase for the lifetime of the index.
func (idx *LineIndex) SamplingRatio() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.ratio
}

// SampleCount returns the number of entries in the sample table.
func (idx *LineIndex) SampleCount() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.offsets)
}

// OffsetOfSample returns the byte offset of sample s, i.e. the start of
// line s*SamplingRatio().
func (idx *LineIndex) OffsetOfSample(s int) (int64, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if s < 0 || s >= len(idx.offsets) {
		return 0, contract.ErrOutOfRange
	}
	return idx.offsets[s], nil
}

// RequestStop cooperatively cancels the background scan. It is
// idempotent and returns immediately; call Join (or Close) to wait for
// the scan to actually terminate.
func (idx *LineIndex) RequestStop() {
	if idx.stopRequested.CompareAndSwap(false, true) {
		idx.cancel()
	}
}

// Join waits for the background scan to terminate and returns any
// terminal error it recorded. Cancellation is not surfaced as an
// error: the index remains valid for every line already indexed.
func (idx *LineIndex) Join() error {
	return idx.group.Wait()
}

// Close requests cancellation (a no-op if the scan already finished),
// joins the scan, and releases the file handle. Close must be called
// exactly once; LineReader and TokenizedLines values built on this
// index must not be used afterward.
func (idx *LineIndex) Close() error {
	idx.RequestStop()
	err := idx.Join()
	if cerr := idx.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (idx *LineIndex) scan(ctx context.Context) error {
	defer idx.scanFinished.Store(true)

	f, err := os.Open(idx.path)
	if err != nil {
		return fmt.Errorf("rowdex: producer open %s: %w", idx.path, err)
	}
	defer f.Close()

	idx.logger.Debug("rowdex: scan started", "path", idx.path, "size", idx.fileSize)

	br := bufio.NewReaderSize(f, 64*1024)

	ratio := 1
	var offsetsBuf []int64
	offsetsBuf = append(offsetsBuf, 0)

	var n int64
	var pos int64
	var lastLine string
	resampled := false

	lastCancelCheck := time.Now()
	lastProgressAt := time.Now()
	lastProgressLines := int64(0)
	lastPercent := -1

	flush := func() {
		idx.mu.Lock()
		idx.offsets = append(idx.offsets, offsetsBuf...)
		idx.ratio = ratio
		idx.mu.Unlock()
		idx.totalLines.Store(n)
		offsetsBuf = offsetsBuf[:0]
	}

	publishProgress := func(force bool) {
		if idx.onProgress == nil {
			return
		}
		elapsed := time.Since(lastProgressAt) >= 500*time.Millisecond
		enoughLines := n-lastProgressLines >= 50
		if !force && !elapsed && !enoughLines {
			return
		}
		percent := 100
		if !force && idx.fileSize > 0 {
			percent = int(pos * 100 / idx.fileSize)
			if percent > 99 {
				percent = 99
			}
		}
		if percent != lastPercent || elapsed || force {
			idx.onProgress(int(n), percent)
			lastPercent = percent
			lastProgressAt = time.Now()
			lastProgressLines = n
		}
	}

	for {
		if idx.stopRequested.Load() {
			idx.logger.Debug("rowdex: scan cancelled", "lines", n)
			break
		}
		if n == int64(idx.maxLines) {
			idx.limitReached.Store(true)
			idx.logger.Info("rowdex: scan hit line limit", "limit", idx.maxLines)
			break
		}

		line, rerr := br.ReadString('\n')

		if rerr != nil && rerr != io.EOF {
			flush()
			col := utf8.RuneCountInString(lastLine) + 1
			idx.logger.Error("rowdex: scan read failed", "line", n, "err", rerr)
			return &contract.ReadFailedError{Line: int(n), Column: col, Err: rerr}
		}

		if len(line) == 0 && rerr == io.EOF {
			break
		}

		pos += int64(len(line))
		n++
		lastLine = trimTrailingWhitespace(line)

		if n%int64(ratio) == 0 {
			offsetsBuf = append(offsetsBuf, pos)
		}

		if time.Since(lastCancelCheck) >= 100*time.Millisecond {
			lastCancelCheck = time.Now()
			if ctx.Err() != nil || (idx.isCancelled != nil && idx.isCancelled()) {
				idx.stopRequested.Store(true)
				idx.logger.Debug("rowdex: scan cancelled", "lines", n)
				if rerr == io.EOF {
					// Fall through so the partially-read final line is
					// still committed below before we return.
				} else {
					break
				}
			}
		}

		publishProgress(false)

		if !resampled && n == int64(idx.minProbe) {
			resampled = true
			flush()
			idx.mu.Lock()
			firstSample := idx.offsets[0]
			secondSample := idx.offsets[1]
			idx.mu.Unlock()

			denom := pos - secondSample
			if denom > 0 {
				approx := n * (idx.fileSize - secondSample) / denom
				maxSamples := int64(idx.maxSamples)
				newRatio := int((approx + maxSamples/2) / maxSamples)
				if newRatio < 1 {
					newRatio = 1
				}
				if newRatio > 1 {
					idx.mu.Lock()
					compacted := make([]int64, 0, len(idx.offsets)/newRatio+1)
					for i := 0; i < len(idx.offsets); i += newRatio {
						compacted = append(compacted, idx.offsets[i])
					}
					idx.offsets = compacted
					idx.ratio = newRatio
					idx.mu.Unlock()
					ratio = newRatio
					idx.logger.Debug("rowdex: scan resampled", "ratio", ratio, "approx_lines", approx)
				}
			}
			_ = firstSample
		}

		if len(offsetsBuf) == scanChunkLines {
			flush()
		}

		if rerr == io.EOF {
			break
		}
	}

	flush()
	publishProgress(true)
	idx.logger.Info("rowdex: scan finished", "lines", n, "limit_reached", idx.limitReached.Load())
	return nil
}

func trimTrailingWhitespace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// discardHandler is a slog.Handler that drops every record, used when
// no Logger is supplied so the scan never pays for formatting it will
// throw away.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler   { return discardHandler{} }
func (discardHandler) WithGroup(name string) slog.Handler         { return discardHandler{} }
