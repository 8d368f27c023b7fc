/*
Package search provides full-text search over stored assessments.

The index is an in-memory Bleve scorch index built on demand from the
assessment store; explanations and signal descriptions are indexed so a
user can find past assessments by the language they contain ("sleep",
"fatigue", ...).
*/
package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hea-health/risk-engine/internal/risk"
)

// assessmentDoc is the indexed shape of one assessment.
type assessmentDoc struct {
	User        string `json:"user"`
	RiskLevel   string `json:"riskLevel"`
	Explanation string `json:"explanation"`
	Signals     string `json:"signals"`
}

// Indexer manages the in-memory search index over assessments.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// NewIndexer creates an empty in-memory index.
func NewIndexer() (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Indexer{bleveIndex: index}, nil
}

// buildIndexMapping creates the Bleve mapping for assessment documents.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	userField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("user", userField)

	levelField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("riskLevel", levelField)

	explanationField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("explanation", explanationField)

	signalsField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("signals", signalsField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexAssessments adds a batch of assessments to the index.
func (i *Indexer) IndexAssessments(assessments []*risk.Assessment) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, a := range assessments {
		descs := make([]string, 0, len(a.Signals))
		for _, s := range a.Signals {
			descs = append(descs, s.Description)
		}
		doc := assessmentDoc{
			User:        a.UserID,
			RiskLevel:   a.RiskLevel.String(),
			Explanation: a.Explanation,
			Signals:     strings.Join(descs, ". "),
		}
		if err := batch.Index(a.ID, doc); err != nil {
			return fmt.Errorf("failed to index assessment %s: %w", a.ID, err)
		}
	}
	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply index batch: %w", err)
	}
	return nil
}

// Match is one search hit.
type Match struct {
	AssessmentID string
	Score        float64
}

// Search returns the assessment ids matching the query, best first.
func (i *Indexer) Search(query string, limit int) ([]Match, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	request := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)

	results, err := i.bleveIndex.Search(request)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	matches := make([]Match, 0, len(results.Hits))
	for _, hit := range results.Hits {
		matches = append(matches, Match{AssessmentID: hit.ID, Score: hit.Score})
	}
	return matches, nil
}

// Close releases the index.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.bleveIndex.Close()
}
