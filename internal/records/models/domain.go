package models

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	dErrors "ansdns/pkg/domain-errors"
)

var ansDomainPattern = regexp.MustCompile(`^[a-z0-9]{2,15}$`)

// NormalizeDomain folds case, applies NFKC and checks the ANS label syntax.
// The result is the only key records are stored and looked up under.
func NormalizeDomain(domain string) (string, error) {
	folded := cases.Lower(language.Und).String(domain)
	normalized := norm.NFKC.String(folded)
	if !ansDomainPattern.MatchString(normalized) {
		return "", dErrors.New(dErrors.CodeInvalidANSSyntax, "domain must match [a-z0-9]{2,15}")
	}
	return normalized, nil
}
