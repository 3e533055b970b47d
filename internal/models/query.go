package models

// QueryIntent categorizes what kind of answer a query is after.
type QueryIntent string

const (
	IntentFactual     QueryIntent = "factual"
	IntentConceptual  QueryIntent = "conceptual"
	IntentComparative QueryIntent = "comparative"
	IntentAnalytical  QueryIntent = "analytical"
	IntentTechnical   QueryIntent = "technical"
	IntentUnknown     QueryIntent = "unknown"
)

// QueryContext is per-request derived metadata about a query.
// Complexity is on a 1-5 scale and never decreases as contributing
// factors (technical density, clause structure) are added.
type QueryContext struct {
	OriginalQuery string      `json:"original_query"`
	Intent        QueryIntent `json:"intent"`
	IsTechnical   bool        `json:"is_technical"`
	Complexity    int         `json:"complexity"`
	DomainTerms   []string    `json:"domain_terms,omitempty"`
}

// EnhancedQuery is the query after expansion and optional decomposition.
// SubQueries is non-empty only when complexity exceeds 2.
type EnhancedQuery struct {
	Original   string       `json:"original"`
	Expanded   string       `json:"expanded"`
	Context    QueryContext `json:"context"`
	SubQueries []string     `json:"sub_queries,omitempty"`
	Keywords   []string     `json:"keywords,omitempty"`
}

// QueryRequest is a query-time request against the pipeline.
type QueryRequest struct {
	Query   string         `json:"query"`
	TopK    int            `json:"top_k,omitempty"`
	Weights *SearchWeights `json:"weights,omitempty"`
}

// Validate applies defaults and rejects empty queries.
func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.TopK <= 0 {
		q.TopK = 5
	}
	if q.TopK > 50 {
		q.TopK = 50
	}
	return nil
}
