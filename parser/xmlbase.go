package parser

import (
	"errors"
	"fmt"
	"net/url"
)

var errNoBase = errors.New("no xml:base established, need an absolute URI")

// CumulativeBase resolves next against the current base per RFC 3986.
// Without a current base, next must itself be absolute.
func CumulativeBase(current, next string) (string, error) {
	nextURI, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%s: %w", next, err)
	}
	if current == "" {
		if !nextURI.IsAbs() {
			return "", fmt.Errorf("%s: %w", next, errNoBase)
		}
		return next, nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%s: %w", current, err)
	}
	return base.ResolveReference(nextURI).String(), nil
}
