package service

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DomainContext selects which tenant level a generated hostname serves.
type DomainContext string

const (
	ContextOrganization DomainContext = "organization"
	ContextStore        DomainContext = "store"
	ContextEcommerce    DomainContext = "ecommerce"
)

// contextSuffixes maps a generation context to the hostname suffix token.
var contextSuffixes = map[DomainContext]string{
	ContextOrganization: "org",
	ContextStore:        "store",
	ContextEcommerce:    "shop",
}

// ParsedHostname is the inverse of Generate.
type ParsedHostname struct {
	Slug       string
	Context    DomainContext
	BaseDomain string
}

// DomainGenerator synthesizes platform subdomains under the configured base
// domain: <slug>-<suffix>.<baseDomain>.
type DomainGenerator struct {
	baseDomain string
}

// NewDomainGenerator creates a generator for the given platform base domain.
func NewDomainGenerator(baseDomain string) *DomainGenerator {
	return &DomainGenerator{baseDomain: strings.ToLower(strings.TrimSpace(baseDomain))}
}

// BaseDomain returns the configured platform root domain.
func (g *DomainGenerator) BaseDomain() string {
	return g.baseDomain
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CleanSlug normalizes a human-readable name into a hostname-safe slug:
// lowercase, diacritics stripped, non [a-z0-9 -] dropped, whitespace and
// repeated hyphens collapsed, edge hyphens trimmed. Idempotent.
func CleanSlug(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	s = b.String()

	s = strings.Join(strings.Fields(s), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// Generate returns the canonical hostname for a slug in the given context.
func (g *DomainGenerator) Generate(slug string, dc DomainContext) string {
	return fmt.Sprintf("%s-%s.%s", CleanSlug(slug), contextSuffixes[dc], g.baseDomain)
}

// GenerateUnique returns the canonical hostname if it is absent from
// existing, otherwise the hostname with a 4-character random suffix spliced
// into the label. The suffixed form is not re-checked against the set; the
// residual collision probability is accepted and the persistence layer's
// uniqueness constraint is the real guard.
func (g *DomainGenerator) GenerateUnique(slug string, dc DomainContext, existing map[string]bool) string {
	base := g.Generate(slug, dc)
	if !existing[base] {
		return base
	}
	return g.withRandomSuffix(slug, dc)
}

// GenerateAttempts returns candidate hostnames for callers that probe the
// persistent store themselves: the clean base form first, then maxAttempts-1
// randomly suffixed variants.
func (g *DomainGenerator) GenerateAttempts(slug string, dc DomainContext, maxAttempts int) []string {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	attempts := make([]string, 0, maxAttempts)
	attempts = append(attempts, g.Generate(slug, dc))
	for i := 1; i < maxAttempts; i++ {
		attempts = append(attempts, g.withRandomSuffix(slug, dc))
	}
	return attempts
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func (g *DomainGenerator) withRandomSuffix(slug string, dc DomainContext) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = base36[rand.Intn(len(base36))]
	}
	return fmt.Sprintf("%s-%s-%s.%s", CleanSlug(slug), string(suffix), contextSuffixes[dc], g.baseDomain)
}

// ExtractContext returns the generation context encoded in a hostname, or ""
// when the hostname was not produced by this generator.
func (g *DomainGenerator) ExtractContext(hostname string) DomainContext {
	parsed := g.ParseHostname(hostname)
	if parsed == nil {
		return ""
	}
	return parsed.Context
}

// ParseHostname is the inverse of Generate. Returns nil when the hostname
// does not end with the configured base domain or carries no known suffix.
func (g *DomainGenerator) ParseHostname(hostname string) *ParsedHostname {
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	dotBase := "." + g.baseDomain
	if !strings.HasSuffix(hostname, dotBase) {
		return nil
	}

	label := strings.TrimSuffix(hostname, dotBase)
	idx := strings.LastIndex(label, "-")
	if idx <= 0 {
		return nil
	}

	token := label[idx+1:]
	for dc, suffix := range contextSuffixes {
		if token == suffix {
			return &ParsedHostname{
				Slug:       label[:idx],
				Context:    dc,
				BaseDomain: g.baseDomain,
			}
		}
	}
	return nil
}
