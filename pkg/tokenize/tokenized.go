package tokenize

import (
	"sync"

	"github.com/user/rowdex/pkg/contract"
)

// LineSource is the minimal capability TokenizedLines needs from a
// line-retrieval collaborator. *lineindex.LineReader satisfies it;
// tests substitute a plain slice-backed fake.
type LineSource interface {
	GetLine(n int) (string, error)
}

// TokenizedLines caches the field-split form of lines pulled from a
// LineSource, re-tokenizing on a cache miss and evicting by distance
// from the requested line when the cache is full.
type TokenizedLines struct {
	source LineSource

	mu     sync.Mutex
	params contract.TokenizerParams
	cache  *cache
}

// New binds a TokenizedLines to source, using capacity for the
// tokenized-line cache (DefaultCacheCapacity if capacity <= 0) and
// contract.DefaultTokenizerParams() until SetTokenizer is called.
func New(source LineSource, capacity int) *TokenizedLines {
	return &TokenizedLines{
		source: source,
		params: contract.DefaultTokenizerParams(),
		cache:  newCache(capacity),
	}
}

// SetTokenizer changes the (escape, separator, quote) triple used for
// future tokenization and discards every cached tokenized line, since
// they were split under the old parameters. It rejects a null
// separator, which would make every character its own field boundary.
func (t *TokenizedLines) SetTokenizer(p contract.TokenizerParams) error {
	if p.Separator == 0 {
		return contract.ErrInvalidSeparator
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params = p
	t.cache.flush()
	return nil
}

// Params returns the tokenizer parameters currently in effect.
func (t *TokenizedLines) Params() contract.TokenizerParams {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params
}

// GetTokenizedLine returns the fields of line n, tokenizing and
// caching it on first access. It propagates whatever error the
// underlying LineSource returns for an out-of-range or unreadable
// line.
func (t *TokenizedLines) GetTokenizedLine(n int) ([]string, error) {
	t.mu.Lock()
	if fields, ok := t.cache.get(n); ok {
		t.mu.Unlock()
		return fields, nil
	}
	params := t.params
	t.mu.Unlock()

	line, err := t.source.GetLine(n)
	if err != nil {
		return nil, err
	}

	fields := tokenizeLine(line, params)

	t.mu.Lock()
	t.cache.put(n, fields)
	t.mu.Unlock()

	return fields, nil
}

// ColumnCount returns the number of fields in line n, tokenizing it if
// necessary.
func (t *TokenizedLines) ColumnCount(n int) (int, error) {
	fields, err := t.GetTokenizedLine(n)
	if err != nil {
		return 0, err
	}
	return len(fields), nil
}

// CacheSize returns the number of tokenized lines currently cached.
func (t *TokenizedLines) CacheSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.size()
}
