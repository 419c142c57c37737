package vectorstore

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func testPoints() []Point {
	return []Point{
		{ID: 3, Vector: []float32{1, 0}, Ticker: "VCB", Section: SectionStatistics, Text: "statistics-financial (Q5/2024)"},
		{ID: 1, Vector: []float32{0, 1}, Ticker: "VCB", Section: SectionStatistics, Text: "statistics-financial (Q1/2024)"},
		{ID: 2, Vector: []float32{1, 1}, Ticker: "FPT", Section: SectionStatistics, Text: "statistics-financial (Q5/2024)"},
		{ID: 4, Vector: []float32{0.9, 0.1}, Ticker: "VCB", Section: "income-statement", Text: "revenue"},
	}
}

func TestMemoryStoreScroll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	require.NoError(t, s.Upsert(ctx, testPoints()))

	pts, err := s.Scroll(ctx, Filter{Ticker: "VCB", Section: SectionStatistics}, 50)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, uint64(1), pts[0].ID)
	assert.Equal(t, uint64(3), pts[1].ID)

	pts, err = s.Scroll(ctx, Filter{}, 2)
	require.NoError(t, err)
	assert.Len(t, pts, 2)

	pts, err = s.Scroll(ctx, Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, pts, 4)
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	require.NoError(t, s.Upsert(ctx, testPoints()))

	hits, err := s.Search(ctx, []float32{1, 0}, Filter{Ticker: "VCB"}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, uint64(3), hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, uint64(4), hits[1].ID)

	_, err = s.Search(ctx, []float32{1, 0, 0}, Filter{}, 2)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	require.NoError(t, s.Upsert(ctx, testPoints()))
	require.NoError(t, s.Upsert(ctx, []Point{{ID: 1, Vector: []float32{0, 0}, Ticker: "HPG"}}))
	assert.Equal(t, 4, s.Len())

	pts, _ := s.Scroll(ctx, Filter{Ticker: "HPG"}, 10)
	require.Len(t, pts, 1)

	err := s.Upsert(ctx, []Point{{ID: 9, Vector: []float32{1}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPointPeriod(t *testing.T) {
	p := testPoints()[0]
	assert.True(t, p.Period().Annual)
	assert.Equal(t, 2024, p.Period().Year)
}

func TestObjectIDIsDeterministic(t *testing.T) {
	assert.Equal(t, objectID(42), objectID(42))
	assert.NotEqual(t, objectID(42), objectID(43))
}

func TestWhereFilter(t *testing.T) {
	assert.Nil(t, whereFilter(Filter{}))
	assert.NotNil(t, whereFilter(Filter{Ticker: "VCB"}))
	assert.NotNil(t, whereFilter(Filter{Ticker: "VCB", Section: SectionStatistics}))
}

func TestSchema(t *testing.T) {
	class := Schema("FinancialStatement")
	assert.Equal(t, "none", class.Vectorizer)
	names := make([]string, 0, len(class.Properties))
	for _, p := range class.Properties {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"pointId", "ticker", "section", "text", "timestamp"}, names)
}

func TestParseKeepsFullPointID(t *testing.T) {
	s := &WeaviateStore{class: "FinancialStatement"}
	result := &models.GraphQLResponse{Data: map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"FinancialStatement": []interface{}{
				map[string]interface{}{
					"pointId": "18446744073709551557",
					"ticker":  "VIC",
					"section": SectionStatistics,
					"text":    "statistics-financial (Q5/2024)",
				},
			},
		},
	}}

	hits := s.parse(result)
	require.Len(t, hits, 1)
	assert.Equal(t, uint64(18446744073709551557), hits[0].ID)
	assert.Equal(t, "VIC", hits[0].Ticker)
}

func TestWeaviateStore(t *testing.T) {
	addr := os.Getenv("WEAVIATE_URL")
	if addr == "" {
		t.Skip("WEAVIATE_URL not set")
	}
	ctx := context.Background()

	s, err := NewWeaviateStore(addr, "", "StockchatTest", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Upsert(ctx, testPoints()))

	pts, err := s.Scroll(ctx, Filter{Ticker: "VCB", Section: SectionStatistics}, 50)
	require.NoError(t, err)
	assert.Len(t, pts, 2)

	hits, err := s.Search(ctx, []float32{1, 0}, Filter{Ticker: "VCB"}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uint64(3), hits[0].ID)
}

func TestNewWeaviateStoreRejectsBadURL(t *testing.T) {
	_, err := NewWeaviateStore("not a url", "", "C", zerolog.Nop())
	assert.Error(t, err)
}
