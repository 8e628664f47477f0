package checker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PromptKind tells which pipeline stage a prompt belongs to.
type PromptKind int

const (
	KindExtract PromptKind = iota
	KindVerify
	KindReport
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	Kind   PromptKind
	System string
	User   string
}

// reportArticleLimit caps how many characters of the article the report
// writer sees.
const reportArticleLimit = 1000

const extractSystem = `You are a claim extraction specialist. Your job is to analyze news articles
and identify specific factual claims that can be verified.

For each article, extract claims that are:
- Specific and verifiable (not opinions or predictions)
- Important to the article's narrative
- Factual statements (statistics, quotes, events, dates, etc.)

Return your response as a JSON array of claim objects with this format:
[
    {
        "claim": "The exact claim text",
        "type": "statistic|quote|event|date|fact",
        "context": "Brief context from article"
    }
]

Extract 3-10 claims depending on article length. Focus on the most important claims.`

const verifySystem = `You are a professional fact-checker. Your job is to verify claims using the
web search results you are given.

For each claim:
1. Read the search results provided with the claim
2. Analyze the credibility of sources
3. Determine the claim's veracity
4. Provide a clear assessment

Your response should include:
- Verdict: TRUE / FALSE / PARTIALLY TRUE / UNVERIFIABLE
- Reasoning: Brief explanation of your assessment
- Sources: List of URLs you used
- Confidence: High / Medium / Low

Be thorough but concise. Focus on credible sources like news organizations,
academic institutions, and official websites.`

const reportSystem = `You are a report writer specializing in fact-check reports. Create clear,
professional reports that help news editors understand article credibility.

Your report should include:
1. Executive Summary (2-3 sentences on overall article credibility)
2. Claim-by-Claim Analysis (for each claim, include verdict and key evidence)
3. Overall Assessment (credibility rating and recommendations)
4. Sources (list of all sources used)

Format the report in clear markdown with proper headings and structure.
Be objective and evidence-based. Highlight any red flags or concerns.`

// BuildExtractPrompt asks for the verifiable claims of an article.
func BuildExtractPrompt(article string) Prompt {
	return Prompt{
		Kind:   KindExtract,
		System: extractSystem,
		User:   "Extract verifiable claims from this article:\n\n" + article,
	}
}

// BuildVerifyPrompt asks for a verdict on one claim given search evidence.
// searched is false when no search provider is configured.
func BuildVerifyPrompt(claim string, evidence []SearchResult, searched bool) Prompt {
	var sb strings.Builder
	sb.WriteString("Fact-check this claim:\n\n")
	sb.WriteString(claim)
	sb.WriteString("\n\n")
	switch {
	case !searched:
		sb.WriteString("No web search is available. Assess the claim from what you know and mark the confidence accordingly.\n")
	case len(evidence) == 0:
		sb.WriteString("The web search returned no results for this claim.\n")
	default:
		sb.WriteString("Search results:\n")
		for i, r := range evidence {
			sb.WriteString(fmt.Sprintf("%d. %s\n   %s\n", i+1, r.Title, r.URL))
			if r.Description != "" {
				sb.WriteString(fmt.Sprintf("   %s\n", r.Description))
			}
		}
	}
	return Prompt{Kind: KindVerify, System: verifySystem, User: sb.String()}
}

// BuildReportPrompt asks for the final report over all claim results.
func BuildReportPrompt(article string, results []ClaimResult) Prompt {
	excerpt := article
	if utf8.RuneCountInString(excerpt) > reportArticleLimit {
		excerpt = string([]rune(excerpt)[:reportArticleLimit]) + "..."
	}

	var sb strings.Builder
	sb.WriteString("Create a comprehensive fact-check report.\n\n")
	sb.WriteString("ORIGINAL ARTICLE:\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n\nFACT-CHECK RESULTS:\n")
	sb.WriteString(SummarizeResults(results))
	sb.WriteString("\n\nPlease generate a professional fact-check report based on these findings.")

	return Prompt{Kind: KindReport, System: reportSystem, User: sb.String()}
}

// SummarizeResults renders the per-claim results block.
func SummarizeResults(results []ClaimResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("**Claim %d:** %s\n\n%s\n", i+1, r.Claim, r.Result))
	}
	return strings.Join(parts, "\n\n")
}
