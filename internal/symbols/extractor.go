package symbols

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/shanehull/stockchat/internal/types"
)

// Validator confirms whether an unknown but well-formed token is a listed ticker.
type Validator interface {
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)
}

// Result holds the outcome of one extraction. Each slice is deduplicated and keeps
// first-seen order.
type Result struct {
	Valid   []types.Ticker
	Invalid []string
	// LowConfidence lists the valid tickers that were accepted on shape alone.
	LowConfidence []types.Ticker
}

func (r Result) Empty() bool {
	return len(r.Valid) == 0
}

type Extractor struct {
	cache     Cache
	validator Validator
	group     singleflight.Group
	log       zerolog.Logger
}

// NewExtractor builds an Extractor. A nil cache gets a MemoryCache; a nil validator
// accepts unknown well-formed tokens with low confidence.
func NewExtractor(cache Cache, validator Validator, log zerolog.Logger) *Extractor {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Extractor{cache: cache, validator: validator, log: log}
}

// ClearCache forgets every cached validation result.
func (e *Extractor) ClearCache(ctx context.Context) error {
	return e.cache.Clear(ctx)
}

// Extract finds the tickers mentioned in text.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	var res Result
	seen := make(map[string]bool)

	tokens := tokenize(text)

	for _, tok := range tokens {
		up := strings.ToUpper(tok)
		if IsKnown(up) && !seen[up] {
			seen[up] = true
			res.Valid = append(res.Valid, types.Ticker(up))
		}
	}

	for _, tok := range tokens {
		if !symbolShape.MatchString(tok) || seen[tok] {
			continue
		}
		seen[tok] = true

		valid, low := e.check(ctx, tok)
		if !valid {
			res.Invalid = append(res.Invalid, tok)
			continue
		}
		res.Valid = append(res.Valid, types.Ticker(tok))
		if low {
			res.LowConfidence = append(res.LowConfidence, types.Ticker(tok))
		}
	}

	return res
}

// check decides a shape candidate that is not in the vocabulary.
func (e *Extractor) check(ctx context.Context, sym string) (valid, low bool) {
	if IsExcluded(sym) {
		return false, false
	}
	if e.cache.IsValid(ctx, sym) {
		return true, false
	}
	if e.cache.IsInvalid(ctx, sym) {
		return false, false
	}
	if e.validator == nil {
		return true, true
	}

	v, err, _ := e.group.Do(sym, func() (any, error) {
		return e.validator.ValidateSymbol(ctx, sym)
	})
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", sym).Msg("Symbol validation failed, accepting provisionally")
		return true, true
	}

	if v.(bool) {
		e.cache.MarkValid(ctx, sym)
		return true, false
	}
	e.cache.MarkInvalid(ctx, sym)
	return false, false
}

// tokenize splits on anything that is not a letter or a digit, so Vietnamese words with
// diacritics stay whole.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
