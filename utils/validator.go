package utils

import (
	"net/url"
	"regexp"
)

// Custom aliases are limited to the same URL-safe characters used by the
// random code generator.
var aliasFormat = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateURL checks that the submitted target is a syntactically valid
// absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrEmptyURL
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ErrInvalidScheme
	}

	if parsedURL.Host == "" {
		return ErrEmptyHost
	}

	return nil
}

// ValidateAlias checks a caller-chosen short code.
func ValidateAlias(alias string) error {
	if alias == "" {
		return ErrEmptyAlias
	}
	if !aliasFormat.MatchString(alias) {
		return ErrAliasInvalidFormat
	}
	return nil
}
