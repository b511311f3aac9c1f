package repository

import (
	"context"
	"errors"
)

var (
	// ErrFetchTimeout marks a fetch that did not finish within its deadline.
	ErrFetchTimeout = errors.New("fetch timed out")
	// ErrSelectorNotFound marks a page that loaded without the wanted element.
	ErrSelectorNotFound = errors.New("selector not found on page")
)

// PageFetcher defines the contract for loading a remote page.
type PageFetcher interface {
	// Fetch loads url and returns the inner HTML of the first element
	// matching selector.
	Fetch(ctx context.Context, url, selector string) (string, error)
}
