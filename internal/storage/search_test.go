package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		fields []string
		want   bool
	}{
		{name: "upper query lower field", query: "PASSWORD", fields: []string{"title", "reset your password"}, want: true},
		{name: "title only", query: "started", fields: []string{"Getting Started", "body"}, want: true},
		{name: "no match", query: "zzz-no-match", fields: []string{"Getting Started", "body"}, want: false},
		{name: "substring inside word", query: "count", fields: []string{"Account Security"}, want: true},
		{name: "markup is plain text", query: "<h2>", fields: []string{"", "<h2>Welcome</h2>"}, want: true},
		{name: "unicode folding", query: "STRASSE", fields: []string{"straße"}, want: true},
		{name: "no fields", query: "a", fields: nil, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewMatcher(tc.query).Match(tc.fields...))
		})
	}
}
