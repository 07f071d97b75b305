package globmatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitaliisemenov/healthd/internal/business/health/globmatch"
)

func TestCache_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"empty pattern matches everything", "", "anything", true},
		{"exact literal match", "cpu.usage", "cpu.usage", true},
		{"exact literal mismatch", "cpu.usage", "cpu.load", false},
		{"wildcard suffix", "disk_*", "disk_space", true},
		{"wildcard suffix mismatch", "disk_*", "network_in", false},
		{"multi-term positive list, second matches", "cpu.usage mem.*", "mem.available", true},
		{"negated term excludes", "!disk_io *", "disk_io", false},
		{"negated term, other input falls through to positive *", "!disk_io *", "disk_space", true},
		{"all-negative list defaults to match", "!disk_io !disk_ops", "cpu.usage", true},
		{"all-negative list, excluded term", "!disk_io !disk_ops", "disk_io", false},
		{"whitespace-only pattern matches everything", "   ", "x", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := globmatch.NewCache(0)
			assert.Equal(t, tt.want, c.Match(tt.pattern, tt.input))
		})
	}
}

func TestCache_MatchReusesCompiledTerms(t *testing.T) {
	t.Parallel()
	c := globmatch.NewCache(2)

	assert.True(t, c.Match("svc_*", "svc_api"))
	assert.True(t, c.Match("svc_*", "svc_worker"))
	assert.False(t, c.Match("svc_*", "other"))
}
