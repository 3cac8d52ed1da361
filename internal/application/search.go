package application

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
)

const (
	ActionIndex  = "index"
	ActionDelete = "delete"
)

// IndexJob is one search-index mutation, either applied inline or shipped
// through the queue to the index worker.
type IndexJob struct {
	Action string         `json:"action"`
	ID     int64          `json:"id"`
	Doc    map[string]any `json:"doc,omitempty"`
}

func jobFor(action string, rec *entity.Recipe) IndexJob {
	job := IndexJob{Action: action, ID: rec.ID}
	if action == ActionIndex {
		job.Doc = map[string]any{
			"id":          rec.ID,
			"name":        rec.Name,
			"ingredients": rec.Ingredients,
			"steps":       rec.Steps,
			"user_id":     rec.UserID,
			"is_public":   rec.IsPublic,
			"created_at":  rec.CreatedAt.Format(time.RFC3339Nano),
		}
	}
	return job
}

// enqueueIndex keeps the search index in sync best-effort. Failures are
// logged and never fail the originating write.
func (s *Service) enqueueIndex(ctx context.Context, action string, rec *entity.Recipe) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	job := jobFor(action, rec)
	if s.Publisher != nil {
		if err := s.Publisher.PublishJSON(ctx, job); err == nil {
			return
		} else if s.Logger != nil {
			s.Logger.WithError(err).WithField("recipe_id", rec.ID).Warn("index publish failed; applying inline")
		}
	}
	if err := NewIndexer(s.ES, s.ESIndex, s.Logger).Apply(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("recipe_id", rec.ID).Warn("search index update failed")
	}
}

// SearchByIngredient prefers the search index when configured and falls back
// to the repository's full scan otherwise.
func (s *Service) SearchByIngredient(ctx context.Context, ingredient string) ([]*entity.Recipe, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return []*entity.Recipe{}, nil
	}
	if s.ES == nil || s.ESIndex == "" {
		return s.Repo.SearchByIngredient(ctx, ingredient)
	}

	ids, err := s.searchIndexIDs(ctx, ingredient)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("search index query failed; falling back to repository scan")
		}
		return s.Repo.SearchByIngredient(ctx, ingredient)
	}

	out := make([]*entity.Recipe, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Service) searchIndexIDs(ctx context.Context, ingredient string) ([]int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"ingredients": map[string]any{"query": ingredient, "operator": "and"},
			},
		},
		"size":    50,
		"sort":    []map[string]any{{"created_at": map[string]any{"order": "desc"}}},
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, &esError{status: res.Status()}
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type esError struct{ status string }

func (e *esError) Error() string { return "elasticsearch: " + e.status }

// Indexer applies index jobs to Elasticsearch. Shared by the inline path and
// the queue worker.
type Indexer struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *Indexer {
	return &Indexer{ES: es, Index: index, Logger: logger}
}

func (ix *Indexer) Apply(ctx context.Context, job IndexJob) error {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	docID := strconv.FormatInt(job.ID, 10)
	switch job.Action {
	case ActionDelete:
		req := esapi.DeleteRequest{Index: ix.Index, DocumentID: docID}
		res, err := req.Do(c, ix.ES)
		if err != nil {
			return err
		}
		defer func() { _ = res.Body.Close() }()
		// 404 is fine: the doc was never indexed.
		if res.IsError() && res.StatusCode != 404 {
			return &esError{status: res.Status()}
		}
		return nil
	default:
		b, err := json.Marshal(job.Doc)
		if err != nil {
			return err
		}
		req := esapi.IndexRequest{Index: ix.Index, DocumentID: docID, Body: strings.NewReader(string(b)), Refresh: "false"}
		res, err := req.Do(c, ix.ES)
		if err != nil {
			return err
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return &esError{status: res.Status()}
		}
		return nil
	}
}
