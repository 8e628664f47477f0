package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fact_check_news/checker"
	"fact_check_news/page"
)

// checkerBackend answers the page controller in-process, reporting
// failures the same way the HTTP endpoint does.
type checkerBackend struct {
	chk *checker.Checker
}

func (b checkerBackend) FactCheck(ctx context.Context, article string) (string, error) {
	res, err := b.chk.Check(ctx, article)
	switch {
	case errors.Is(err, checker.ErrArticleTooShort), errors.Is(err, checker.ErrNoClaims):
		return "", &page.BackendError{Status: http.StatusBadRequest, Message: err.Error()}
	case err != nil:
		return "", &page.BackendError{Status: http.StatusInternalServerError, Message: fmt.Sprintf("Fact-check failed: %v", err)}
	}
	return res.Report, nil
}
