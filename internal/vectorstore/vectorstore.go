/*
Package vectorstore holds financial statement points and answers the two queries the
retrieval engine needs: an exact metadata scroll and a nearest-neighbour search.
*/
package vectorstore

import (
	"context"
	"errors"

	"github.com/shanehull/stockchat/internal/types"
)

// SectionStatistics tags points built from the statistics-financial endpoint.
const SectionStatistics = "statistics-financial"

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Point is one stored chunk of financial statement text.
type Point struct {
	ID        uint64    `json:"id"`
	Vector    []float32 `json:"-"`
	Ticker    string    `json:"ticker"`
	Text      string    `json:"text"`
	Section   string    `json:"section"`
	Timestamp string    `json:"timestamp"`
}

// Period reads the reporting period from the point text.
func (p Point) Period() types.Period {
	return types.ParsePeriod(p.Text)
}

// ScoredPoint is a search hit. Score is cosine similarity, higher is closer.
type ScoredPoint struct {
	Point
	Score float64 `json:"score"`
}

// Filter restricts queries by exact payload match. Empty fields match anything.
type Filter struct {
	Ticker  string
	Section string
}

func (f Filter) Match(p Point) bool {
	return (f.Ticker == "" || f.Ticker == p.Ticker) && (f.Section == "" || f.Section == p.Section)
}

// Store persists points. Scroll with limit <= 0 returns every matching point.
type Store interface {
	Upsert(ctx context.Context, points []Point) error
	Scroll(ctx context.Context, filter Filter, limit int) ([]Point, error)
	Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]ScoredPoint, error)
}
