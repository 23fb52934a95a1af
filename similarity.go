package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// SimilarityClient talks to the external text-similarity service that turns
// course descriptions and an interest query into 0-100 relevance scores.
// The whole candidate batch goes out in one request.
type SimilarityClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSimilarityClient builds a client; an empty base URL means the service
// is not configured and callers should use the keyword fallback.
func NewSimilarityClient(baseURL string, timeout time.Duration) *SimilarityClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SimilarityClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type similarityDoc struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type similarityRequest struct {
	Query   string          `json:"query"`
	Courses []similarityDoc `json:"courses"`
}

type similarityResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// Relevance fetches relevance scores for the batch. Scores are clamped to
// the 0-100 range; missing courses score 0. The caller is responsible for
// substituting KeywordRelevance when this fails.
func (c *SimilarityClient) Relevance(ctx context.Context, courses []Course, query string) (map[string]float64, error) {
	if query == "" || len(courses) == 0 {
		return map[string]float64{}, nil
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("similarity service not configured")
	}

	payload := similarityRequest{Query: query, Courses: make([]similarityDoc, 0, len(courses))}
	for _, course := range courses {
		text := course.Description
		if len(text) < 5 {
			text = course.Name
		}
		payload.Courses = append(payload.Courses, similarityDoc{Code: course.Code, Text: text})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode similarity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/relevance", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build similarity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call similarity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("similarity service returned status %d", resp.StatusCode)
	}

	var decoded similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode similarity response: %w", err)
	}

	scores := make(map[string]float64, len(decoded.Scores))
	for code, score := range decoded.Scores {
		if score < 0 {
			score = 0
		} else if score > 100 {
			score = 100
		}
		scores[NormalizeCode(code)] = score
	}
	return scores, nil
}

// KeywordRelevance is the deterministic fallback when the similarity service
// is unavailable: 20 points per query token found in the course name or
// description, capped at 100.
func KeywordRelevance(courses []Course, query string) map[string]float64 {
	scores := make(map[string]float64, len(courses))
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return scores
	}
	for _, c := range courses {
		text := strings.ToLower(c.Name + " " + c.Description)
		hits := 0
		for _, t := range tokens {
			if strings.Contains(text, t) {
				hits++
			}
		}
		if hits > 0 {
			score := float64(hits) * 20
			if score > 100 {
				score = 100
			}
			scores[c.Code] = score
		}
	}
	return scores
}
