package models

// RankedResult is a single fused retrieval hit. Produced fresh per query,
// never persisted.
type RankedResult struct {
	ChunkID      string        `json:"chunk_id"`
	DocumentID   string        `json:"document_id"`
	Content      string        `json:"content"`
	Score        float64       `json:"score"`
	SectionType  SectionType   `json:"section_type,omitempty"`
	SectionLevel int           `json:"section_level,omitempty"`
	Quality      QualityScores `json:"quality,omitempty"`
}

// ResponseStyle selects the tone and depth of a generated answer.
type ResponseStyle string

const (
	StyleConcise   ResponseStyle = "concise"
	StyleDetailed  ResponseStyle = "detailed"
	StyleTechnical ResponseStyle = "technical"
	StyleSimple    ResponseStyle = "simple"
)

// SourceAttribution cites one chunk that contributed to an answer.
type SourceAttribution struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Section    string  `json:"section,omitempty"`
	Page       int     `json:"page,omitempty"`
}

// ContextWindowStats summarizes the chunk set handed to generation.
type ContextWindowStats struct {
	TotalChunks   int     `json:"total_chunks"`
	TotalWords    int     `json:"total_words"`
	AvgChunkScore float64 `json:"avg_chunk_score"`
}

// FormattedResponse is the final packaged answer with attribution.
type FormattedResponse struct {
	Answer          string              `json:"answer"`
	FormattedAnswer string              `json:"formatted_answer"`
	Sources         []SourceAttribution `json:"sources"`
	Style           ResponseStyle       `json:"style"`
	ContextWindow   ContextWindowStats  `json:"context_window"`
}

// QueryMetadata is the raw query-understanding metadata returned
// alongside a FormattedResponse.
type QueryMetadata struct {
	Original    string        `json:"original"`
	Expanded    string        `json:"expanded"`
	Intent      QueryIntent   `json:"intent"`
	Complexity  int           `json:"complexity"`
	IsTechnical bool          `json:"is_technical"`
	SubQueries  []string      `json:"sub_queries,omitempty"`
	Weights     SearchWeights `json:"weights"`
	Style       ResponseStyle `json:"response_style"`
}

// QueryResponse is the full response returned by the pipeline.
type QueryResponse struct {
	*FormattedResponse
	Metadata    QueryMetadata `json:"metadata"`
	QueryTimeMS int64         `json:"query_time_ms"`
}
