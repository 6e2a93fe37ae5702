package corpus

// PriceRange is the coarse cost tier of an attraction.
type PriceRange string

const (
	PriceLow    PriceRange = "low"
	PriceMedium PriceRange = "medium"
	PriceHigh   PriceRange = "high"
)

// Valid reports whether p is one of the known tiers.
func (p PriceRange) Valid() bool {
	switch p {
	case PriceLow, PriceMedium, PriceHigh:
		return true
	}
	return false
}

// Location is a geo point plus a human-readable postal address.
type Location struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Address string  `json:"address" yaml:"address"`
}

// Attraction is a curated Bangkok destination. The corpus of attractions is
// the ground truth for everything the guide recommends.
type Attraction struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Category    string     `json:"category" yaml:"category"`
	Location    Location   `json:"location" yaml:"location"`
	Rating      float64    `json:"rating" yaml:"rating"`
	PriceRange  PriceRange `json:"priceRange" yaml:"price_range"`
	Tags        []string   `json:"tags" yaml:"tags"`
	ImageURL    string     `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// Metadata is the structured copy of an attraction stored next to its
// indexed text. Field names match the documents table used by the hosted
// index, so results can be rebuilt without re-parsing content.
type Metadata struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Location   Location   `json:"location"`
	Rating     float64    `json:"rating"`
	PriceRange PriceRange `json:"priceRange"`
	Tags       []string   `json:"tags"`
	ImageURL   string     `json:"imageUrl,omitempty"`
}

// Metadata returns the indexable metadata for a.
func (a Attraction) Metadata() Metadata {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	return Metadata{
		ID:         a.ID,
		Title:      a.Title,
		Category:   a.Category,
		Location:   a.Location,
		Rating:     a.Rating,
		PriceRange: a.PriceRange,
		Tags:       tags,
		ImageURL:   a.ImageURL,
	}
}
