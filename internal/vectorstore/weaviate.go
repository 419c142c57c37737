package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// scrollPageSize bounds one Get page while scrolling.
const scrollPageSize = 100

// pointNamespace derives stable object ids from point ids.
var pointNamespace = uuid.MustParse("6f0b7e0c-3c55-4d1e-9a4a-5f1f0d6c2b11")

// WeaviateStore keeps points in one Weaviate class with caller-supplied vectors.
type WeaviateStore struct {
	client *weaviate.Client
	class  string
	log    zerolog.Logger
}

// NewWeaviateStore connects to rawURL (for example http://localhost:8080).
func NewWeaviateStore(rawURL, apiKey, class string, log zerolog.Logger) (*WeaviateStore, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse weaviate url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("failed to parse weaviate url: missing host in %q", rawURL)
	}

	cfg := weaviate.Config{Host: u.Host, Scheme: u.Scheme}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateStore{client: client, class: class, log: log}, nil
}

// Schema describes the class the store writes to.
func Schema(class string) *models.Class {
	filterable := new(bool)
	*filterable = true

	return &models.Class{
		Class:       class,
		Description: "Financial statement text chunks for one ticker and reporting period.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:            "pointId",
				DataType:        []string{"text"},
				IndexFilterable: filterable,
			},
			{
				Name:            "ticker",
				DataType:        []string{"text"},
				Tokenization:    "field",
				IndexFilterable: filterable,
			},
			{
				Name:            "section",
				DataType:        []string{"text"},
				Tokenization:    "field",
				IndexFilterable: filterable,
			},
			{
				Name:         "text",
				DataType:     []string{"text"},
				Tokenization: "word",
			},
			{
				Name:     "timestamp",
				DataType: []string{"text"},
			},
		},
	}
}

// EnsureSchema creates the class when it does not exist yet.
func (s *WeaviateStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.Schema().ClassGetter().WithClassName(s.class).Do(ctx); err == nil {
		return nil
	}

	if err := s.client.Schema().ClassCreator().WithClass(Schema(s.class)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %w", s.class, err)
	}
	s.log.Info().Str("class", s.class).Msg("Created vector store class")
	return nil
}

func objectID(id uint64) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(pointNamespace, []byte(strconv.FormatUint(id, 10))).String())
}

func (s *WeaviateStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(points))
	for _, p := range points {
		objects = append(objects, &models.Object{
			Class:  s.class,
			ID:     objectID(p.ID),
			Vector: p.Vector,
			Properties: map[string]interface{}{
				"pointId":   strconv.FormatUint(p.ID, 10),
				"ticker":    p.Ticker,
				"section":   p.Section,
				"text":      p.Text,
				"timestamp": p.Timestamp,
			},
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("failed to upsert point %s: %s", r.ID, r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// Scroll pages through matching objects by offset until the class is exhausted or
// limit points have been read. A limit <= 0 reads everything.
func (s *WeaviateStore) Scroll(ctx context.Context, filter Filter, limit int) ([]Point, error) {
	where := whereFilter(filter)

	out := make([]Point, 0)
	for offset := 0; ; offset += scrollPageSize {
		size := scrollPageSize
		if limit > 0 && limit-len(out) < size {
			size = limit - len(out)
		}

		q := s.client.GraphQL().Get().
			WithClassName(s.class).
			WithFields(s.fields(false)...).
			WithLimit(size).
			WithOffset(offset)
		if where != nil {
			q = q.WithWhere(where)
		}

		result, err := q.Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("scroll error: %s", result.Errors[0].Message)
		}

		hits := s.parse(result)
		for _, h := range hits {
			out = append(out, h.Point)
		}
		if len(hits) < size || (limit > 0 && len(out) >= limit) {
			break
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *WeaviateStore) Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]ScoredPoint, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	q := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(s.fields(true)...).
		WithNearVector(nearVector).
		WithLimit(limit)
	if where := whereFilter(filter); where != nil {
		q = q.WithWhere(where)
	}

	result, err := q.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search error: %s", result.Errors[0].Message)
	}

	return s.parse(result), nil
}

func (s *WeaviateStore) fields(withScore bool) []graphql.Field {
	fields := []graphql.Field{
		{Name: "pointId"},
		{Name: "ticker"},
		{Name: "section"},
		{Name: "text"},
		{Name: "timestamp"},
	}
	if withScore {
		fields = append(fields, graphql.Field{
			Name:   "_additional",
			Fields: []graphql.Field{{Name: "certainty"}},
		})
	}
	return fields
}

func whereFilter(f Filter) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if f.Ticker != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"ticker"}).
			WithOperator(filters.Equal).
			WithValueText(f.Ticker))
	}
	if f.Section != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"section"}).
			WithOperator(filters.Equal).
			WithValueText(f.Section))
	}

	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}

func (s *WeaviateStore) parse(result *models.GraphQLResponse) []ScoredPoint {
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return []ScoredPoint{}
	}
	objects, ok := data[s.class].([]interface{})
	if !ok {
		return []ScoredPoint{}
	}

	out := make([]ScoredPoint, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		sp := ScoredPoint{Point: Point{
			Ticker:    getString(m, "ticker"),
			Section:   getString(m, "section"),
			Text:      getString(m, "text"),
			Timestamp: getString(m, "timestamp"),
		}}
		// ids use the full uint64 range, which neither int nor number properties hold
		if id, err := strconv.ParseUint(getString(m, "pointId"), 10, 64); err == nil {
			sp.ID = id
		}
		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				sp.Score = certainty
			}
		}
		out = append(out, sp)
	}
	return out
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
