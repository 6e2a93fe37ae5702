package recommend

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bkkguide/bkkguide/internal/corpus"
)

func ids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		message string
		answer  string
		want    []string
	}{
		{
			name:    "temples and food",
			message: "Tell me about temples and food",
			answer:  "Bangkok has many attractions.",
			want:    []string{"temple-1", "market-1"},
		},
		{
			name:    "no triggers",
			message: "Is it hot in April?",
			answer:  "It is hot and humid.",
			want:    nil,
		},
		{
			name:    "answer keyword only",
			message: "Where should I go after dinner?",
			answer:  "Khao San Road is the heart of the nightlife scene.",
			want:    []string{"nightlife-1"},
		},
		{
			name:    "case insensitive",
			message: "ROYAL PALACE tickets",
			answer:  "",
			want:    []string{"palace-1"},
		},
		{
			name:    "all four triggered truncates to three",
			message: "temple, food, party and history",
			answer:  "",
			want:    []string{"temple-1", "market-1", "nightlife-1"},
		},
		{
			name:    "substring match",
			message: "Is there a barber near the hotel?",
			answer:  "",
			want:    []string{"nightlife-1"},
		},
		{
			name:    "historic in answer",
			message: "Anything old to see?",
			answer:  "The historic Grand Palace is a must.",
			want:    []string{"palace-1"},
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(e.Extract(tt.message, tt.answer, nil))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Extract = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_CandidateDetails(t *testing.T) {
	got := New().Extract("temple", "", nil)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Title != "Wat Pho (Temple of the Reclining Buddha)" || c.Category != "Temple" {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if c.Rating != 4.7 || c.PriceRange != corpus.PriceLow {
		t.Errorf("rating/price = %v/%v", c.Rating, c.PriceRange)
	}
	if c.PersonalizedReason != "Perfect for experiencing traditional Thai massage and Buddhist culture" {
		t.Errorf("reason = %q", c.PersonalizedReason)
	}
}

func TestExtract_ReturnsIndependentTags(t *testing.T) {
	e := New()
	first := e.Extract("temple", "", nil)
	first[0].Tags[0] = "changed"

	second := e.Extract("temple", "", nil)
	if second[0].Tags[0] != "temple" {
		t.Errorf("tags[0] = %q, rule table was mutated", second[0].Tags[0])
	}
}

func TestExtract_Grounded(t *testing.T) {
	e := New(WithGrounding(true))

	got := ids(e.Extract("temples and food", "", []string{"chatuchak-market", "lumpini-park"}))
	if len(got) != 1 || got[0] != "market-1" {
		t.Errorf("grounded Extract = %v, want [market-1]", got)
	}

	if got := e.Extract("temples and food", "", nil); len(got) != 0 {
		t.Errorf("grounded Extract with no retrieval = %v, want none", ids(got))
	}
}

func TestExtract_CustomRules(t *testing.T) {
	e := New(WithRules([]Rule{{
		Name:            "park",
		MessageKeywords: []string{"park"},
		Candidate:       Candidate{ID: "park-1", CorpusID: "lumpini-park"},
	}}))

	if got := ids(e.Extract("a quiet park", "", nil)); len(got) != 1 || got[0] != "park-1" {
		t.Errorf("Extract = %v, want [park-1]", got)
	}
	if got := e.Extract("temple", "", nil); len(got) != 0 {
		t.Errorf("default rules still active: %v", ids(got))
	}
}

func TestDefaultRules_MatchCorpus(t *testing.T) {
	byID := make(map[string]corpus.Attraction)
	for _, a := range corpus.Bangkok() {
		byID[a.ID] = a
	}
	for _, r := range DefaultRules() {
		a, ok := byID[r.Candidate.CorpusID]
		if !ok {
			t.Errorf("rule %s: corpus id %q not in corpus", r.Name, r.Candidate.CorpusID)
			continue
		}
		if a.Location != r.Candidate.Location {
			t.Errorf("rule %s: location %+v, corpus has %+v", r.Name, r.Candidate.Location, a.Location)
		}
	}
}

func TestCandidate_JSONOmitsCorpusID(t *testing.T) {
	b, err := json.Marshal(DefaultRules()[0].Candidate)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Contains(s, "wat-pho") {
		t.Errorf("JSON leaks corpus id: %s", s)
	}
	for _, key := range []string{`"personalizedReason"`, `"priceRange":"low"`, `"location":{`} {
		if !strings.Contains(s, key) {
			t.Errorf("JSON %s missing %s", s, key)
		}
	}
}
