package checker

import (
	"context"
	"encoding/json"
	"strings"
)

// MockLLM 离线占位模型，按阶段返回固定内容，不调用任何接口。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	switch prompt.Kind {
	case KindExtract:
		return mockClaims(prompt.User), nil
	case KindVerify:
		var sb strings.Builder
		sb.WriteString("Verdict: UNVERIFIABLE\n")
		sb.WriteString("Reasoning: Offline mock model; no assessment was made.\n")
		sb.WriteString("Sources: none\n")
		sb.WriteString("Confidence: Low\n")
		return sb.String(), nil
	default:
		var sb strings.Builder
		sb.WriteString("# Fact-Check Report\n\n")
		sb.WriteString("## Executive Summary\n\n")
		sb.WriteString("This report was produced by the offline mock model.\n\n")
		sb.WriteString("## Claim-by-Claim Analysis\n\n")
		if i := strings.Index(prompt.User, "FACT-CHECK RESULTS:\n"); i >= 0 {
			body := prompt.User[i+len("FACT-CHECK RESULTS:\n"):]
			if j := strings.LastIndex(body, "\n\nPlease generate"); j >= 0 {
				body = body[:j]
			}
			sb.WriteString(body)
			sb.WriteString("\n")
		}
		sb.WriteString("\n## Overall Assessment\n\nUnverified.\n")
		return sb.String(), nil
	}
}

// mockClaims returns the first sentences of the article as claims.
func mockClaims(user string) string {
	article := user
	if i := strings.Index(user, "\n\n"); i >= 0 {
		article = user[i+2:]
	}
	var items []extractedClaim
	for _, s := range strings.Split(article, ".") {
		s = strings.TrimSpace(s)
		if len(s) < 10 {
			continue
		}
		items = append(items, extractedClaim{Claim: s, Type: "fact", Context: "mock"})
		if len(items) == 3 {
			break
		}
	}
	if items == nil {
		items = []extractedClaim{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}
