package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort default = %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "legislation.parsed" {
		t.Fatalf("NATSSubject default = %q", cfg.NATSSubject)
	}
	if cfg.QdrantCollection != "legislation" {
		t.Fatalf("QdrantCollection default = %q", cfg.QdrantCollection)
	}
	if cfg.ChunkMaxChars != 1200 || cfg.ChunkOverlap != 200 {
		t.Fatalf("chunking defaults = %d/%d", cfg.ChunkMaxChars, cfg.ChunkOverlap)
	}
	if cfg.EmbedPoolSize != 4 {
		t.Fatalf("EmbedPoolSize default = %d", cfg.EmbedPoolSize)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("rate limiting must default to disabled, got %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("CONTEXT_TOP_N", "7")
	t.Setenv("EMBED_POOL_SIZE", "not-a-number")

	cfg := Load()
	if cfg.APIPort != "9999" {
		t.Fatalf("APIPort override = %q", cfg.APIPort)
	}
	if cfg.ContextTopN != 7 {
		t.Fatalf("ContextTopN override = %d", cfg.ContextTopN)
	}
	// Unparseable numbers fall back to the default.
	if cfg.EmbedPoolSize != 4 {
		t.Fatalf("bad int must fall back, got %d", cfg.EmbedPoolSize)
	}
}
