package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AdvisorService wires the audit engine, the recommendation pipeline and
// the program index behind one facade consumed by the HTTP handlers.
type AdvisorService struct {
	catalog    []Course
	registry   *RuleRegistry
	audit      *AuditEngine
	graph      *PrereqGraph
	similarity *SimilarityClient
	programs   *ProgramIndex
	cfg        Config
	logger     *slog.Logger
}

// NewAdvisorService builds the service from loaded components. The prereq
// graph is derived from the catalog here so callers only hand over data.
func NewAdvisorService(catalog []Course, registry *RuleRegistry, similarity *SimilarityClient, programs *ProgramIndex, cfg Config, logger *slog.Logger) (*AdvisorService, error) {
	graph, err := BuildPrereqGraph(catalog)
	if err != nil {
		return nil, fmt.Errorf("build prerequisite graph: %w", err)
	}
	return &AdvisorService{
		catalog:    catalog,
		registry:   registry,
		audit:      NewAuditEngine(registry, catalog, cfg.OverflowSlack),
		graph:      graph,
		similarity: similarity,
		programs:   programs,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Majors lists the majors the rule registry knows about.
func (s *AdvisorService) Majors() []string {
	return s.registry.Majors()
}

// Audit runs the degree audit for one transcript.
func (s *AdvisorService) Audit(req *AuditRequest) (*AuditResponse, error) {
	startTime := time.Now()

	report, err := s.audit.Audit(req.Major, req.Taken)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", req.Major, err)
	}

	progress := make(map[Category]float64, len(report.Categories))
	for cat, cr := range report.Categories {
		progress[cat] = cr.Progress()
	}

	return &AuditResponse{
		Report:   report,
		Progress: progress,
		Metadata: ResponseMetadata{
			GeneratedAt:      time.Now(),
			ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		},
	}, nil
}

// Recommend is the main recommendation pipeline.
func (s *AdvisorService) Recommend(ctx context.Context, req *RecommendationRequest) (*RecommendationResponse, error) {
	startTime := time.Now()

	// Step 1: Audit the transcript to learn what is still missing.
	report, err := s.audit.Audit(req.Major, req.Taken)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", req.Major, err)
	}
	rule, err := s.registry.Rule(req.Major)
	if err != nil {
		return nil, err
	}

	// Step 2: Classify the gaps into candidate pools.
	class := Classify(report, rule)

	// Step 3: Build the student profile.
	level := LevelUndergraduate
	if req.Level != "" {
		level = AcademicLevel(req.Level)
	}
	profile := NewStudentProfile(req.Year, req.Term, level, req.Taken)

	// Step 4: Resolve interest relevance, falling back to keyword matching
	// when the similarity service is unreachable.
	relevance := map[string]float64{}
	if req.Interests != "" {
		relevance, err = s.similarity.Relevance(ctx, s.catalog, req.Interests)
		if err != nil {
			s.logger.Warn("similarity service unavailable, using keyword fallback",
				"error", err)
			relevance = KeywordRelevance(s.catalog, req.Interests)
		}
	}

	// Step 5: Filter, score and rank the catalog.
	opts := DefaultRankOptions()
	opts.MinScore = s.cfg.MinScore
	opts.MaxResults = s.cfg.MaxResults
	if req.MinScore != nil {
		opts.MinScore = *req.MinScore
	}
	if req.MaxResults > 0 {
		opts.MaxResults = req.MaxResults
	}
	keywords := subjectKeywords(req.Interests)
	ranked := RankCandidates(s.catalog, profile, class, relevance, keywords, opts)

	// Step 6: Optionally pack the top picks into a term plan.
	resp := &RecommendationResponse{
		Major:           req.Major,
		Recommendations: ranked,
	}
	if req.IncludePlan || req.PlanCredits > 0 {
		planCredits := req.PlanCredits
		if planCredits <= 0 {
			planCredits = s.cfg.PlanCredits
		}
		plan := BuildTermPlan(ranked, planCredits)
		resp.Plan = &plan
	}

	resp.Metadata = ResponseMetadata{
		GeneratedAt:      time.Now(),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	}
	s.logger.Debug("recommendations generated",
		"major", req.Major,
		"candidates", len(ranked),
		"elapsed_ms", resp.Metadata.ProcessingTimeMs)
	return resp, nil
}

// subjectKeywords splits the interest query into the tokens the
// subject-relevance penalty compares subject prefixes against.
func subjectKeywords(interests string) []string {
	return strings.Fields(interests)
}

// UnlockTree reports which courses the given course unlocks, to the
// requested depth.
func (s *AdvisorService) UnlockTree(code string, depth int) (*UnlockTree, error) {
	return s.graph.UnlockTree(code, depth)
}

// SearchPrograms searches majors and minors by free text.
func (s *AdvisorService) SearchPrograms(query, searchType string) []ProgramMatch {
	return s.programs.Search(query, searchType)
}

// Synergy ranks minors against a major by course and topic overlap.
func (s *AdvisorService) Synergy(majorID string) ([]SynergyMatch, error) {
	return s.programs.Synergy(majorID)
}
