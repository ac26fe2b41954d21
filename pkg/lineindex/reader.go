package lineindex

import (
	"bytes"
	"fmt"

	"github.com/user/rowdex/pkg/contract"
)

// readChunk is the amount of file read per ReadAt call while scanning
// forward for a line terminator. Most lines fit in one chunk.
const readChunk = 4096

// LineReader retrieves the raw text of any indexed line by number. It
// is bound to a LineIndex and safe for concurrent use by multiple
// goroutines; retrievals within the same sample window share a
// run-local cache of intermediate offsets (the "between" cache),
// guarded by the index's own mutex.
type LineReader struct {
	idx *LineIndex
}

// NewReader binds a LineReader to idx. idx must outlive the reader.
func NewReader(idx *LineIndex) *LineReader { return &LineReader{idx: idx} }

// GetLine returns the raw text of line n (0-based), with its trailing
// line terminator and any trailing '\r' stripped. It returns
// *contract.OutOfRangeError if n is at or past the index's current
// LineCount.
//
// Implements the four-branch dispatch described for the sampled
// retrieval algorithm: dense lines (r == 0) are a direct seek; sparse
// lines reuse or extend a run-local cache of the offsets between the
// enclosing sample and the requested line, so no line already visited
// within the active sample is ever re-scanned.
//
// GetLine holds the index mutex for the whole call, including its
// seeks and reads, so concurrent callers serialize rather than
// interleave.
func (r *LineReader) GetLine(n int) (string, error) {
	idx := r.idx
	if n < 0 || n >= idx.LineCount() {
		return "", &contract.OutOfRangeError{Requested: n, LineCount: idx.LineCount()}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	ratio := idx.ratio
	s := n / ratio
	rem := n % ratio

	if s >= len(idx.offsets) {
		return "", &contract.OutOfRangeError{Requested: n, LineCount: idx.LineCount()}
	}
	sampleOffset := idx.offsets[s]

	if idx.activeSample != s {
		idx.between = nil
		idx.activeSample = s
	}
	between := idx.between

	roomRemains := func() bool { return len(between) < ratio-1 }

	var content string
	var err error

	switch {
	case rem == 0:
		var next int64
		content, next, err = r.rawLineAt(sampleOffset)
		if err == nil && len(between) == 0 && roomRemains() {
			between = append(between, next)
		}

	case len(between) == 0:
		cur := sampleOffset
		var next int64
		_, next, err = r.rawLineAt(cur) // line s*ratio; its text isn't n's
		if err == nil {
			if roomRemains() {
				between = append(between, next)
			}
			cur = next
			for i := 0; i < rem && err == nil; i++ {
				content, next, err = r.rawLineAt(cur)
				if err == nil {
					if roomRemains() {
						between = append(between, next)
					}
					cur = next
				}
			}
		}

	case rem <= len(between):
		var next int64
		content, next, err = r.rawLineAt(between[rem-1])
		if err == nil && rem == len(between) && roomRemains() {
			between = append(between, next)
		}

	default:
		cur := between[len(between)-1]
		steps := rem - len(between) + 1
		var next int64
		for i := 0; i < steps && err == nil; i++ {
			content, next, err = r.rawLineAt(cur)
			if err == nil {
				if roomRemains() {
					between = append(between, next)
				}
				cur = next
			}
		}
	}

	if err != nil {
		return "", err
	}

	if idx.activeSample == s {
		idx.between = between
	}

	return content, nil
}

// rawLineAt reads the line starting at offset, returning its decoded
// text and the byte offset of the start of the following line.
func (r *LineReader) rawLineAt(offset int64) (content string, nextOffset int64, err error) {
	idx := r.idx
	buf := make([]byte, readChunk)
	var collected []byte
	pos := offset

	for pos < idx.fileSize {
		want := buf
		if remaining := idx.fileSize - pos; remaining < int64(len(want)) {
			want = want[:remaining]
		}
		nRead, rerr := idx.file.ReadAt(want, pos)
		if nRead > 0 {
			if i := bytes.IndexByte(want[:nRead], '\n'); i >= 0 {
				collected = append(collected, want[:i]...)
				return decodeLine(collected), pos + int64(i) + 1, nil
			}
			collected = append(collected, want[:nRead]...)
			pos += int64(nRead)
		}
		if rerr != nil {
			break
		}
	}

	return decodeLine(collected), idx.fileSize, nil
}

func decodeLine(raw []byte) string {
	return string(bytes.TrimRight(raw, "\r\n"))
}

// String implements fmt.Stringer for debugging.
func (r *LineReader) String() string {
	return fmt.Sprintf("LineReader(%s)", r.idx.path)
}
