package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// LoadCatalogSQLite reads the course catalog from a SQLite database produced
// by the ingestion pipeline. Expected table:
//
//	courses(code TEXT, name TEXT, credit REAL, terms TEXT,
//	        prerequisites TEXT, description TEXT)
//
// terms is a comma-separated list, empty or "Unknown" when not known.
func LoadCatalogSQLite(path string) ([]Course, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT code, name, credit, terms, prerequisites, description FROM courses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var catalog []Course
	for rows.Next() {
		var code, name, terms, prereq, desc sql.NullString
		var credit sql.NullFloat64
		if err := rows.Scan(&code, &name, &credit, &terms, &prereq, &desc); err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		if !code.Valid || strings.TrimSpace(code.String) == "" {
			continue
		}
		catalog = append(catalog, Course{
			Code:          code.String,
			Name:          strings.TrimSpace(name.String),
			Credit:        credit.Float64,
			Terms:         parseTerms(terms.String),
			Prerequisites: prereq.String,
			Description:   strings.TrimSpace(desc.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read courses: %w", err)
	}

	return NormalizeCatalog(catalog), nil
}

// NormalizeCatalog is the single place where catalog rows are made sound:
// codes upper-cased, duplicate codes dropped, missing credits defaulted,
// levels derived, prerequisite text parsed. Defaults are logged as data
// quality warnings, never treated as fatal.
func NormalizeCatalog(catalog []Course) []Course {
	out := make([]Course, 0, len(catalog))
	seen := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		c.Code = NormalizeCode(c.Code)
		if c.Code == "" || seen[c.Code] {
			continue
		}
		seen[c.Code] = true

		if c.Credit <= 0 {
			slog.Warn("course has no credit value, assuming default",
				"course", c.Code, "default", DefaultCredit)
			c.Credit = DefaultCredit
		}
		c.Level = CourseLevel(c.Code)
		if c.Level == 0 {
			slog.Warn("course level could not be derived", "course", c.Code)
		}

		expr := ParsePrerequisites(c.Prerequisites)
		c.prereq = &expr
		out = append(out, c)
	}
	return out
}

func parseTerms(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "unknown") {
		return nil
	}
	var terms []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
