// Package policy holds the stateless credential checks and the secret
// generator the shell applies before handing a plaintext to the session.
package policy

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/models"
)

// DefaultMinLength is the minimum secret length when none is configured.
const DefaultMinLength = 8

// Punctuation is the symbol set used by both the strength check and the generator.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Rule identifies one strength requirement.
type Rule int

const (
	RuleMinLength Rule = iota
	RuleUppercase
	RuleLowercase
	RuleDigit
	RuleSymbol
	RuleNoWhitespace
)

func (r Rule) String() string {
	switch r {
	case RuleMinLength:
		return "too short"
	case RuleUppercase:
		return "needs an uppercase letter"
	case RuleLowercase:
		return "needs a lowercase letter"
	case RuleDigit:
		return "needs a digit"
	case RuleSymbol:
		return "needs a symbol"
	case RuleNoWhitespace:
		return "must not contain whitespace"
	default:
		return "unknown rule"
	}
}

// ValidateStrength returns every rule candidate violates, in Rule order.
// A minLength <= 0 means DefaultMinLength.
func ValidateStrength(candidate string, minLength int) []Rule {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	var upper, lower, digit, symbol, space bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r):
			space = true
		case strings.ContainsRune(Punctuation, r):
			symbol = true
		}
	}

	var violated []Rule
	if len([]rune(candidate)) < minLength {
		violated = append(violated, RuleMinLength)
	}
	if !upper {
		violated = append(violated, RuleUppercase)
	}
	if !lower {
		violated = append(violated, RuleLowercase)
	}
	if !digit {
		violated = append(violated, RuleDigit)
	}
	if !symbol {
		violated = append(violated, RuleSymbol)
	}
	if space {
		violated = append(violated, RuleNoWhitespace)
	}
	return violated
}

// Check is ValidateStrength as an error: nil, or a *common.ValidationError
// listing every violated rule.
func Check(candidate string, minLength int) error {
	violated := ValidateStrength(candidate, minLength)
	if len(violated) == 0 {
		return nil
	}
	rules := make([]string, len(violated))
	for i, r := range violated {
		rules[i] = r.String()
	}
	return &common.ValidationError{Rules: rules}
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_.+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)

// ValidateIdentifier reports whether s is shaped like an email address.
func ValidateIdentifier(s string) bool {
	return emailPattern.MatchString(s)
}

// Classify picks the identifier kind stored for s.
func Classify(s string) models.IdentifierKind {
	if ValidateIdentifier(s) {
		return models.KindEmail
	}
	return models.KindUsername
}
