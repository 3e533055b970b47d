package query

// defaultTechnicalTerms is the built-in domain vocabulary, used when the
// configuration does not supply one.
var defaultTechnicalTerms = []string{
	"rag", "retrieval", "augmented", "generation", "embedding",
	"vector", "semantic", "token", "nlp", "api", "query",
	"database", "index", "search", "relevance", "score",
}

// defaultSynonyms is a small built-in synonym lexicon for query expansion.
// Deployments with richer vocabularies supply their own via configuration.
var defaultSynonyms = map[string][]string{
	"big":       {"large", "huge", "sizable"},
	"small":     {"little", "tiny", "compact"},
	"fast":      {"quick", "rapid", "speedy"},
	"slow":      {"sluggish", "gradual"},
	"important": {"significant", "critical", "essential"},
	"problem":   {"issue", "fault", "defect"},
	"fix":       {"repair", "resolve", "correct"},
	"make":      {"create", "build", "produce"},
	"use":       {"apply", "employ", "utilize"},
	"show":      {"display", "present", "demonstrate"},
	"find":      {"locate", "discover", "identify"},
	"change":    {"modify", "alter", "adjust"},
	"start":     {"begin", "launch", "initiate"},
	"stop":      {"halt", "end", "terminate"},
	"capital":   {"metropolis", "seat"},
	"country":   {"nation", "state"},
	"work":      {"function", "operate"},
	"works":     {"functions", "operates"},
	"matter":    {"concern", "substance"},
	"matters":   {"concerns"},
	"help":      {"assist", "aid", "support"},
	"good":      {"effective", "sound", "solid"},
	"bad":       {"poor", "faulty", "defective"},
	"new":       {"recent", "modern", "fresh"},
	"old":       {"legacy", "dated", "aged"},
}

// stopwords are dropped during expansion and keyword extraction.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "nor": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "from": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "has": {}, "have": {}, "had": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "we": {}, "you": {}, "they": {}, "he": {}, "she": {}, "my": {},
	"our": {}, "your": {}, "their": {}, "his": {}, "her": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "should": {}, "could": {},
	"can": {}, "may": {}, "might": {}, "must": {}, "not": {}, "no": {},
	"so": {}, "if": {}, "then": {}, "than": {}, "too": {}, "very": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "when": {}, "where": {},
	"how": {}, "why": {}, "there": {}, "here": {}, "am": {}, "us": {},
	"me": {}, "him": {}, "them": {}, "about": {}, "into": {}, "over": {},
	"under": {}, "again": {}, "more": {}, "most": {}, "some": {}, "any": {},
	"each": {}, "such": {}, "own": {}, "same": {}, "all": {}, "both": {},
	"just": {}, "also": {}, "up": {}, "down": {}, "out": {}, "off": {},
}

// subordinateMarkers signal a subordinate or complement clause. Used as a
// lexical stand-in for a dependency parse when scoring complexity.
var subordinateMarkers = map[string]struct{}{
	"because": {}, "since": {}, "although": {}, "though": {}, "while": {},
	"whereas": {}, "unless": {}, "whether": {}, "that": {}, "if": {},
	"how": {}, "why": {}, "until": {}, "once": {}, "after": {}, "before": {},
}

// clauseBoundaries mark positions where a complex query can be split into
// sub-queries: coordinating conjunctions and subordinating markers.
var clauseBoundaries = map[string]struct{}{
	"and": {}, "or": {}, "but": {}, "nor": {}, "yet": {}, "so": {},
	"because": {}, "since": {}, "although": {}, "though": {}, "whereas": {},
	"while": {}, "unless": {}, "whether": {}, "that": {}, "if": {},
}

func isStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
