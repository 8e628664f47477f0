package checker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxClaims bounds how many claims one article produces.
const DefaultMaxClaims = 10

type extractedClaim struct {
	Claim   string `json:"claim"`
	Type    string `json:"type"`
	Context string `json:"context"`
}

// ParseClaims turns the extractor's reply into claim strings. It prefers the
// outermost JSON array; without one every content line is a claim, and when
// the array is malformed only lines longer than 20 characters are kept.
func ParseClaims(raw string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxClaims
	}

	var claims []string
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]") + 1
	if start != -1 && end > start {
		var items []extractedClaim
		if err := json.Unmarshal([]byte(raw[start:end]), &items); err == nil {
			for _, it := range items {
				if strings.TrimSpace(it.Claim) == "" {
					continue
				}
				ctx := it.Context
				if ctx == "" {
					ctx = "N/A"
				}
				claims = append(claims, fmt.Sprintf("%s (Context: %s)", it.Claim, ctx))
			}
		} else {
			claims = longLines(raw, 20)
		}
	} else {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") {
				continue
			}
			claims = append(claims, line)
		}
	}

	if len(claims) > limit {
		claims = claims[:limit]
	}
	return claims
}

func longLines(raw string, min int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > min {
			out = append(out, line)
		}
	}
	return out
}
