package wiki

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cgt.name/pkg/go-mwclient"
	"cgt.name/pkg/go-mwclient/params"
	"go.uber.org/zap"
)

// EditRequest describes one page write.
type EditRequest struct {
	Title  string
	PageID int64

	Text    string
	Summary string

	// BaseRevID is the revision the text was derived from; the server
	// reports a conflict when the page has moved on.
	BaseRevID int64

	NoCreate   bool
	CreateOnly bool
	Minor      bool
	Bot        bool
}

// Result is the outcome of an edit.
type Result int

const (
	ResultSuccess Result = iota
	ResultNoChange
	ResultConflict
	ResultFailure
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultNoChange:
		return "nochange"
	case ResultConflict:
		return "conflict"
	default:
		return "failure"
	}
}

// EditResult reports what the server did with an edit. Code holds the API
// error code for ResultConflict and ResultFailure.
type EditResult struct {
	Result Result
	Code   string
}

// Sink writes pages. Client is the production implementation.
type Sink interface {
	Edit(ctx context.Context, req EditRequest) (EditResult, error)
}

func (r EditRequest) params() (params.Values, error) {
	p := params.Values{
		"text":    r.Text,
		"summary": r.Summary,
	}
	switch {
	case r.Title != "":
		p["title"] = r.Title
	case r.PageID > 0:
		p["pageid"] = strconv.FormatInt(r.PageID, 10)
	default:
		return nil, ErrNoTarget
	}
	if r.BaseRevID > 0 {
		p["baserevid"] = strconv.FormatInt(r.BaseRevID, 10)
	}
	if r.NoCreate {
		p["nocreate"] = "true"
	}
	if r.CreateOnly {
		p["createonly"] = "true"
	}
	if r.Minor {
		p["minor"] = "true"
	} else {
		p["notminor"] = "true"
	}
	if r.Bot {
		p["bot"] = "true"
	}
	return p, nil
}

// Edit saves the page. A write that leaves the page unchanged is not an error.
// If ctx ends before the server answers, Edit returns the context error; the
// request itself may still complete.
func (c *Client) Edit(ctx context.Context, req EditRequest) (EditResult, error) {
	p, err := req.params()
	if err != nil {
		return EditResult{Result: ResultFailure}, err
	}
	if err := ctx.Err(); err != nil {
		return EditResult{Result: ResultFailure}, err
	}

	done := make(chan error, 1)
	go func() {
		done <- c.api.Edit(p)
	}()

	select {
	case <-ctx.Done():
		c.logger.Warn("edit abandoned",
			zap.String("page_title", req.Title),
			zap.Error(ctx.Err()),
		)
		return EditResult{Result: ResultFailure, Code: "timeout"}, ctx.Err()
	case err = <-done:
	}

	result, err := classify(err)
	if err != nil {
		return result, fmt.Errorf("failed to edit %s: %w", req.target(), err)
	}
	return result, nil
}

func (r EditRequest) target() string {
	if r.Title != "" {
		return r.Title
	}
	return "page id " + strconv.FormatInt(r.PageID, 10)
}

func classify(err error) (EditResult, error) {
	if err == nil {
		return EditResult{Result: ResultSuccess}, nil
	}
	if errors.Is(err, mwclient.ErrEditNoChange) {
		return EditResult{Result: ResultNoChange}, nil
	}

	code := apiErrorCode(err)
	if code == "editconflict" {
		return EditResult{Result: ResultConflict, Code: code}, fmt.Errorf("%w: %v", ErrEditConflict, err)
	}
	return EditResult{Result: ResultFailure, Code: code}, err
}

func apiErrorCode(err error) string {
	var apiErr mwclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *mwclient.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return ""
}
