package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// trackingParams are query parameters stripped during URL
// normalisation. Prefix match applies to "utm_".
var trackingParams = map[string]bool{
	"gclid":      true,
	"fbclid":     true,
	"igshid":     true,
	"mc_cid":     true,
	"mc_eid":     true,
	"ref":        true,
	"ref_source": true,
	"share_id":   true,
}

// NormalizeURL canonicalises a URL for dedup: lowercases scheme and
// host, drops the fragment, strips tracking parameters, and sorts the
// surviving query. Unparseable input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	query := u.Query()
	for param := range query {
		lowered := strings.ToLower(param)
		if trackingParams[lowered] || strings.HasPrefix(lowered, "utm_") {
			query.Del(param)
		}
	}
	u.RawQuery = query.Encode()

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// ContentHash returns a stable hash of the normalised title and body,
// used as the secondary dedup key.
func ContentHash(title, body string) string {
	normalised := normalizeText(title) + "\n" + normalizeText(body)
	sum := sha256.Sum256([]byte(normalised))
	return hex.EncodeToString(sum[:])
}

// normalizeText lowercases and collapses runs of whitespace so
// formatting differences don't defeat the content hash.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// StripHTML reduces an HTML fragment to its visible text. Fetchers call
// this at the boundary so everything downstream sees plain text.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}
