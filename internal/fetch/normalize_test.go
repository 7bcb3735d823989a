package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips utm params",
			in:   "https://Example.com/post?utm_source=news&utm_medium=email&id=7",
			want: "https://example.com/post?id=7",
		},
		{
			name: "strips click ids",
			in:   "https://example.com/a?gclid=xyz&fbclid=abc",
			want: "https://example.com/a",
		},
		{
			name: "drops fragment",
			in:   "https://example.com/a#section",
			want: "https://example.com/a",
		},
		{
			name: "lowercases host only",
			in:   "HTTPS://WWW.Example.COM/Path/To",
			want: "https://www.example.com/Path/To",
		},
		{
			name: "trims trailing slash",
			in:   "https://example.com/post/",
			want: "https://example.com/post",
		},
		{
			name: "sorts query for stability",
			in:   "https://example.com/a?b=2&a=1",
			want: "https://example.com/a?a=1&b=2",
		},
		{
			name: "unparseable returned as-is",
			in:   "not a url",
			want: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestNormalizeURLDedupEquivalence(t *testing.T) {
	a := NormalizeURL("https://example.com/post?utm_campaign=x")
	b := NormalizeURL("https://EXAMPLE.com/post/")
	assert.Equal(t, a, b)
}

func TestContentHash(t *testing.T) {
	base := ContentHash("VMware price bump", "details inside")

	assert.Equal(t, base, ContentHash("VMware price bump", "details inside"))
	assert.Equal(t, base, ContentHash("  vmware   PRICE bump ", "Details   inside"))
	assert.NotEqual(t, base, ContentHash("VMware price bump", "different body"))
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "just words", "just words"},
		{"tags removed", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities decoded", "a &amp; b", "a & b"},
		{"script dropped", "<script>alert(1)</script>visible", "visible"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
