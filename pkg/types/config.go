// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout applied uniformly per request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ent-radar/0.1 (+contact)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EnrichConfig holds settings for the publication enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// Offline disables all network calls; enrichment returns no results.
	Offline bool `json:"offline" yaml:"offline"`

	// MaxResults is the maximum number of publications kept per person (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// OpenAlexMailto is sent as the mailto parameter for polite pool access.
	OpenAlexMailto string `json:"openalex_mailto,omitempty" yaml:"openalex_mailto,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// StoreConfig holds settings for the directory database.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "data/ent-radar.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServerConfig holds settings for the read API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// InstitutionConfig names one roster institution and its listing page.
type InstitutionConfig struct {
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website" yaml:"website"`
}

// IngestConfig holds settings for the refresh pipeline.
type IngestConfig struct {
	// Workers bounds concurrent per-person enrichment within an institution
	// (default 4). The enrichment core holds no shared mutable state, so
	// independent persons may run in parallel.
	Workers int `json:"workers" yaml:"workers"`

	// Institutions is the fixed set of rosters to scrape.
	Institutions []InstitutionConfig `json:"institutions" yaml:"institutions"`
}

// RadarConfig groups all stage configurations.
type RadarConfig struct {
	Enrich EnrichConfig `json:"enrich" yaml:"enrich"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Server ServerConfig `json:"server" yaml:"server"`
	Ingest IngestConfig `json:"ingest" yaml:"ingest"`
}
