// Package recommend derives a short list of attraction suggestions from a
// chat exchange using a fixed keyword rule table.
package recommend

import (
	"strings"

	"github.com/bkkguide/bkkguide/internal/corpus"
)

// MaxCandidates caps the number of suggestions returned for one exchange.
const MaxCandidates = 3

// Candidate is an attraction suggestion shown next to a chat answer.
type Candidate struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Category           string            `json:"category"`
	Location           corpus.Location   `json:"location"`
	Rating             float64           `json:"rating"`
	PriceRange         corpus.PriceRange `json:"priceRange"`
	Tags               []string          `json:"tags"`
	PersonalizedReason string            `json:"personalizedReason"`

	// CorpusID is the corpus attraction this candidate describes.
	CorpusID string `json:"-"`
}

// Extractor evaluates a rule table against a user message and model answer.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	rules []Rule

	// grounded restricts output to candidates whose CorpusID was retrieved.
	grounded bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRules replaces the default rule table.
func WithRules(rules []Rule) Option {
	return func(e *Extractor) { e.rules = rules }
}

// WithGrounding drops candidates whose attraction was not among the
// retrieved documents for the exchange.
func WithGrounding(enabled bool) Option {
	return func(e *Extractor) { e.grounded = enabled }
}

// New creates an Extractor using DefaultRules unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{rules: DefaultRules()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract returns at most MaxCandidates suggestions in rule order. Matching
// is case-insensitive substring containment, so "bar" also matches "barber".
// retrievedIDs is consulted only in grounded mode.
func (e *Extractor) Extract(message, answer string, retrievedIDs []string) []Candidate {
	msg := strings.ToLower(message)
	ans := strings.ToLower(answer)

	var retrieved map[string]bool
	if e.grounded {
		retrieved = make(map[string]bool, len(retrievedIDs))
		for _, id := range retrievedIDs {
			retrieved[id] = true
		}
	}

	var out []Candidate
	for _, r := range e.rules {
		if len(out) == MaxCandidates {
			break
		}
		if !containsAny(msg, r.MessageKeywords) && !containsAny(ans, r.AnswerKeywords) {
			continue
		}
		if e.grounded && !retrieved[r.Candidate.CorpusID] {
			continue
		}
		c := r.Candidate
		c.Tags = append([]string(nil), r.Candidate.Tags...)
		out = append(out, c)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
