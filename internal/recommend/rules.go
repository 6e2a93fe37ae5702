package recommend

import "github.com/bkkguide/bkkguide/internal/corpus"

// Rule maps trigger keywords to a single candidate. A rule fires when any
// MessageKeywords entry occurs in the lower-cased user message or any
// AnswerKeywords entry occurs in the lower-cased model answer.
type Rule struct {
	Name            string
	MessageKeywords []string
	AnswerKeywords  []string
	Candidate       Candidate
}

// DefaultRules returns the built-in rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:            "temple",
			MessageKeywords: []string{"temple", "culture", "religious"},
			AnswerKeywords:  []string{"temple"},
			Candidate: Candidate{
				ID:          "temple-1",
				CorpusID:    "wat-pho",
				Title:       "Wat Pho (Temple of the Reclining Buddha)",
				Description: "Famous temple housing the giant reclining Buddha statue and traditional massage school",
				Category:    "Temple",
				Location: corpus.Location{
					Lat:     13.7465,
					Lng:     100.4927,
					Address: "2 Sanamchai Road, Grand Palace Subdistrict, Bangkok",
				},
				Rating:             4.7,
				PriceRange:         corpus.PriceLow,
				Tags:               []string{"temple", "buddha", "massage", "culture"},
				PersonalizedReason: "Perfect for experiencing traditional Thai massage and Buddhist culture",
			},
		},
		{
			Name:            "market",
			MessageKeywords: []string{"food", "eat", "market"},
			AnswerKeywords:  []string{"food"},
			Candidate: Candidate{
				ID:          "market-1",
				CorpusID:    "chatuchak-market",
				Title:       "Chatuchak Weekend Market",
				Description: "Massive weekend market with food, crafts, and unique finds",
				Category:    "Market",
				Location: corpus.Location{
					Lat:     13.7998,
					Lng:     100.5502,
					Address: "587/10 Kamphaeng Phet 2 Road, Chatuchak, Bangkok",
				},
				Rating:             4.3,
				PriceRange:         corpus.PriceLow,
				Tags:               []string{"shopping", "food", "local", "weekend"},
				PersonalizedReason: "Great for discovering authentic Thai crafts and street food",
			},
		},
		{
			Name:            "nightlife",
			MessageKeywords: []string{"night", "party", "bar"},
			AnswerKeywords:  []string{"nightlife"},
			Candidate: Candidate{
				ID:          "nightlife-1",
				CorpusID:    "khao-san-road",
				Title:       "Khao San Road",
				Description: "Famous backpacker street with nightlife, street food, and shops",
				Category:    "Nightlife",
				Location: corpus.Location{
					Lat:     13.759,
					Lng:     100.4977,
					Address: "Khao San Road, Talat Yot, Phra Nakhon, Bangkok",
				},
				Rating:             4.0,
				PriceRange:         corpus.PriceLow,
				Tags:               []string{"nightlife", "street food", "backpacker", "shopping"},
				PersonalizedReason: "Great for experiencing Bangkok nightlife and street food culture",
			},
		},
		{
			Name:            "historic",
			MessageKeywords: []string{"history", "palace", "royal"},
			AnswerKeywords:  []string{"historic"},
			Candidate: Candidate{
				ID:          "palace-1",
				CorpusID:    "grand-palace",
				Title:       "Grand Palace",
				Description: "Historic royal palace complex and home to the Emerald Buddha",
				Category:    "Historic Site",
				Location: corpus.Location{
					Lat:     13.75,
					Lng:     100.4915,
					Address: "Na Phra Lan Road, Phra Borom Maha Ratchawang, Bangkok",
				},
				Rating:             4.6,
				PriceRange:         corpus.PriceMedium,
				Tags:               []string{"history", "architecture", "culture", "temple"},
				PersonalizedReason: "Perfect for your interest in Thai culture and royal history",
			},
		},
	}
}
