package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"beatpress/store"
)

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"tech", "Tech"},
		{"TECH", "Tech"},
		{"  tech   NEWS ", "Tech News"},
		{"hip-hop", "Hip-hop"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, store.NormalizeCategory(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeCategoryIdempotent(t *testing.T) {
	once := store.NormalizeCategory("music  production tips")
	assert.Equal(t, once, store.NormalizeCategory(once))
}
