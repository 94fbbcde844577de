// Package sharecodec encodes a memory's portable fields into a URL-safe
// token and back. Tokens ride in the `memory` query parameter of a share
// link; images are never embedded and are regenerated on load.
package sharecodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/anikutusu/anikutusu"
)

// Param is the query parameter carrying the share token.
const Param = "memory"

// payload is the wire form of SharedMemoryData. Category and style travel
// as plain strings and are re-parsed at the boundary on decode.
type payload struct {
	Title      string `json:"title"`
	Query      string `json:"query"`
	Category   string `json:"category"`
	ImageStyle string `json:"imageStyle"`
	ResultText string `json:"resultText"`
}

// Encode serializes the shared fields to JSON, base64-encodes the result,
// and percent-encodes it for embedding as a single query parameter value.
func Encode(d anikutusu.SharedMemoryData) string {
	raw, _ := json.Marshal(payload{
		Title:      d.Title,
		Query:      d.Query,
		Category:   string(d.Category),
		ImageStyle: string(d.ImageStyle),
		ResultText: d.ResultText,
	})
	return url.QueryEscape(base64.StdEncoding.EncodeToString(raw))
}

// Decode is the inverse of Encode. It fails soft: every malformed token
// yields a share-decode AppError, never a panic. Unknown category or style
// values are defaulted, missing required fields are an error.
func Decode(token string) (anikutusu.SharedMemoryData, error) {
	var zero anikutusu.SharedMemoryData

	unescaped, err := url.QueryUnescape(token)
	if err != nil {
		return zero, anikutusu.NewShareDecodeError("invalid percent-encoding", err)
	}

	raw, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return zero, anikutusu.NewShareDecodeError("invalid base64 payload", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return zero, anikutusu.NewShareDecodeError("invalid share payload", err)
	}

	required := []struct {
		name  string
		value string
	}{
		{"title", p.Title},
		{"query", p.Query},
		{"resultText", p.ResultText},
	}
	for _, field := range required {
		if field.value == "" {
			return zero, anikutusu.NewShareDecodeError(fmt.Sprintf("missing required field %q", field.name), nil)
		}
	}

	return anikutusu.SharedMemoryData{
		Title:      p.Title,
		Query:      p.Query,
		Category:   anikutusu.ParseCategory(p.Category),
		ImageStyle: anikutusu.ParseImageStyle(p.ImageStyle),
		ResultText: p.ResultText,
	}, nil
}

// ShareLink appends the encoded token to the application's base URL.
func ShareLink(baseURL string, d anikutusu.SharedMemoryData) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + Param + "=" + Encode(d)
}

// TokenFromLink extracts the share token from a full link, returning false
// when the link carries no memory parameter.
func TokenFromLink(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	// Values are already unescaped by url.Parse; re-escape so Decode sees
	// the same token shape as a raw parameter value.
	raw := u.Query().Get(Param)
	if raw == "" {
		return "", false
	}
	return url.QueryEscape(raw), true
}
