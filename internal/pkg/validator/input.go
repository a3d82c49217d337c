package validator

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/futig/panel-product-bot/internal/entity"
)

const SecureScheme = "https://"

// ValidateSiteURL checks a panel address and returns it without trailing slashes.
func ValidateSiteURL(input string) (string, error) {
	site := strings.TrimSpace(input)
	if site == "" {
		return "", fmt.Errorf("%w: site url", entity.ErrMissingField)
	}
	if !strings.HasPrefix(strings.ToLower(site), SecureScheme) {
		return "", fmt.Errorf("%w: site url must start with %s", entity.ErrInvalidFormat, SecureScheme)
	}

	site = strings.TrimRight(site, "/")
	u, err := url.Parse(site)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: site url has no host", entity.ErrInvalidFormat)
	}

	return site, nil
}

// ValidateToken checks an API key.
func ValidateToken(input string) (string, error) {
	token := strings.TrimSpace(input)
	if token == "" {
		return "", fmt.Errorf("%w: token", entity.ErrMissingField)
	}
	if strings.ContainsAny(token, " \t\n") {
		return "", fmt.Errorf("%w: token must not contain spaces", entity.ErrInvalidFormat)
	}
	return token, nil
}

// ValidateUsername checks a panel login name.
func ValidateUsername(input string) (string, error) {
	username := strings.TrimSpace(input)
	if username == "" {
		return "", fmt.Errorf("%w: username", entity.ErrMissingField)
	}
	return username, nil
}

// ValidatePassword only rejects empty input, passwords are kept verbatim.
func ValidatePassword(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%w: password", entity.ErrMissingField)
	}
	return input, nil
}

// ValidateProductName trims the name and requires it to be non-empty.
func ValidateProductName(input string) (string, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return "", fmt.Errorf("%w: product name", entity.ErrMissingField)
	}
	return name, nil
}

// ParsePrice drops every non-digit character, so "250,000" is 250000.
func ParsePrice(input string) (uint64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
	if digits == "" {
		return 0, fmt.Errorf("%w: price must contain digits", entity.ErrInvalidFormat)
	}

	price, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price is too large", entity.ErrInvalidFormat)
	}
	return price, nil
}

// ParseCategoryID expects a plain unsigned integer.
func ParseCategoryID(input string) (uint64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: category id", entity.ErrMissingField)
	}
	for _, r := range trimmed {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: category id must be a number", entity.ErrInvalidFormat)
		}
	}

	id, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: category id must be a number", entity.ErrInvalidFormat)
	}
	return id, nil
}
