package checker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// MinArticleLength is the shortest article the backend accepts.
const MinArticleLength = 50

// DefaultParallel is how many claims are verified at once.
const DefaultParallel = 4

// Per-stage limits on a single model call.
const (
	DefaultExtractTimeout = 60 * time.Second
	DefaultVerifyTimeout  = 90 * time.Second
	DefaultReportTimeout  = 60 * time.Second
)

var (
	ErrArticleTooShort = errors.New("Article too short. Please provide a substantial article to fact-check.")
	ErrNoClaims        = errors.New("No verifiable claims found in the article.")
)

// Options tunes a Checker. Zero values take the defaults.
type Options struct {
	MaxClaims      int
	Parallel       int
	ExtractTimeout time.Duration
	VerifyTimeout  time.Duration // per claim, search included
	ReportTimeout  time.Duration
	Verbose        bool
	Logger         *log.Logger
}

// Checker runs the extract, verify and report stages for an article.
type Checker struct {
	llm       LLMClient
	search    Searcher
	maxClaims int
	parallel  int
	verbose   bool
	logger    *log.Logger

	extractTimeout time.Duration
	verifyTimeout  time.Duration
	reportTimeout  time.Duration
}

// New builds a Checker. search may be nil, in which case claims are
// verified without web evidence.
func New(llm LLMClient, search Searcher, opts Options) (*Checker, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if opts.MaxClaims <= 0 {
		opts.MaxClaims = DefaultMaxClaims
	}
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallel
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = DefaultExtractTimeout
	}
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = DefaultVerifyTimeout
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultReportTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Checker{
		llm:       llm,
		search:    search,
		maxClaims: opts.MaxClaims,
		parallel:  opts.Parallel,
		verbose:   opts.Verbose,
		logger:    opts.Logger,

		extractTimeout: opts.ExtractTimeout,
		verifyTimeout:  opts.VerifyTimeout,
		reportTimeout:  opts.ReportTimeout,
	}, nil
}

func (c *Checker) infof(format string, args ...interface{}) {
	if !c.verbose {
		return
	}
	c.logger.Printf("[INFO] "+format, args...)
}

// Check fact-checks article and returns the synthesized report.
// The length limit counts characters, not bytes.
func (c *Checker) Check(ctx context.Context, article string) (Result, error) {
	if utf8.RuneCountInString(article) < MinArticleLength {
		return Result{}, ErrArticleTooShort
	}

	claims, err := c.ExtractClaims(ctx, article)
	if err != nil {
		return Result{}, err
	}
	if len(claims) == 0 {
		return Result{}, ErrNoClaims
	}
	c.infof("extracted %d claims", len(claims))

	results := c.VerifyClaims(ctx, claims)
	c.infof("verified %d claims", len(results))

	report, err := c.GenerateReport(ctx, article, results)
	if err != nil {
		c.logger.Printf("generate report: %v", err)
		return Result{
			Report:       fmt.Sprintf("Error generating report: %v", err),
			Claims:       results,
			ReportFailed: true,
		}, nil
	}
	return Result{Report: report, Claims: results}, nil
}

// ExtractClaims asks the model for the article's verifiable claims.
func (c *Checker) ExtractClaims(ctx context.Context, article string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.extractTimeout)
	defer cancel()
	raw, err := c.llm.Complete(ctx, BuildExtractPrompt(article))
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	return ParseClaims(raw, c.maxClaims), nil
}

// VerifyClaims checks every claim concurrently. Results keep claim order;
// a failing claim is reported in its result instead of aborting the run.
func (c *Checker) VerifyClaims(ctx context.Context, claims []string) []ClaimResult {
	results := make([]ClaimResult, len(claims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			results[i] = c.verifyClaim(gctx, claim)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Checker) verifyClaim(ctx context.Context, claim string) ClaimResult {
	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	var evidence []SearchResult
	searched := c.search != nil
	if searched {
		hits, err := c.search.Search(ctx, searchQuery(claim))
		if err != nil {
			c.logger.Printf("search for claim failed: %v", err)
			searched = false
		} else {
			evidence = hits
		}
	}

	text, err := c.llm.Complete(ctx, BuildVerifyPrompt(claim, evidence, searched))
	if err != nil {
		return ClaimResult{
			Claim:  claim,
			Result: fmt.Sprintf("Error during fact-check: %v", err),
			Status: StatusError,
		}
	}
	return ClaimResult{Claim: claim, Result: text, Status: StatusCompleted}
}

// GenerateReport writes the final report from the claim results.
func (c *Checker) GenerateReport(ctx context.Context, article string, results []ClaimResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.reportTimeout)
	defer cancel()
	return c.llm.Complete(ctx, BuildReportPrompt(article, results))
}

// searchQuery drops the "(Context: ...)" suffix added by ParseClaims.
func searchQuery(claim string) string {
	if i := strings.LastIndex(claim, " (Context: "); i > 0 {
		return claim[:i]
	}
	return claim
}
