package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Query != "test query" || len(req.Texts) != 2 {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.9, 0.1}})
	}))
	defer srv.Close()

	s, err := NewHTTPScorer(srv.URL, 5)
	if err != nil {
		t.Fatal(err)
	}
	scores, err := s.Score(context.Background(), "test query", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 || scores[0] != 0.9 || scores[1] != 0.1 {
		t.Errorf("scores = %v", scores)
	}
}

func TestHTTPScorerCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.5}})
	}))
	defer srv.Close()

	s, _ := NewHTTPScorer(srv.URL, 5)
	if _, err := s.Score(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Error("expected count mismatch error")
	}
}

func TestHTTPScorerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	s, _ := NewHTTPScorer(srv.URL, 5)
	if _, err := s.Score(context.Background(), "q", []string{"a"}); err == nil {
		t.Error("expected error on 5xx")
	}
}

func TestHTTPScorerEmptyTexts(t *testing.T) {
	s, _ := NewHTTPScorer("http://localhost:1", 1)
	scores, err := s.Score(context.Background(), "q", nil)
	if err != nil || scores != nil {
		t.Errorf("empty input should not hit the network: %v %v", scores, err)
	}
}
