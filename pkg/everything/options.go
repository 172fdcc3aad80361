package everything

import "time"

// SearchOption configures a single Search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	maxResults  int
	pageSize    int
	wholeWord   bool
	pageTimeout time.Duration
	onBatch     BatchFunc
}

// WithMaxResults caps the total number of results accumulated across pages.
func WithMaxResults(n int) SearchOption {
	return func(cfg *searchConfig) {
		if n > 0 {
			cfg.maxResults = n
		}
	}
}

// WithPageSize sets how many results each request/reply round trip covers.
func WithPageSize(n int) SearchOption {
	return func(cfg *searchConfig) {
		if n > 0 {
			cfg.pageSize = n
		}
	}
}

// WithWholeWord requests whole-word matching. Ignored for regex queries,
// which are assumed to express their own boundaries.
func WithWholeWord(on bool) SearchOption {
	return func(cfg *searchConfig) {
		cfg.wholeWord = on
	}
}

// WithPageTimeout bounds how long each page waits for its reply. The
// timeout is per page, not per search.
func WithPageTimeout(d time.Duration) SearchOption {
	return func(cfg *searchConfig) {
		if d > 0 {
			cfg.pageTimeout = d
		}
	}
}

// WithBatchFunc registers a callback invoked with each page's results as
// they arrive.
func WithBatchFunc(fn BatchFunc) SearchOption {
	return func(cfg *searchConfig) {
		cfg.onBatch = fn
	}
}
