package corpus

var bangkok = []Attraction{
	{
		ID:          "wat-pho",
		Title:       "Wat Pho (Temple of the Reclining Buddha)",
		Description: "Famous Buddhist temple housing a giant 46-meter gold-plated reclining Buddha statue and traditional Thai massage school. One of Bangkok's oldest temples with beautiful architecture and peaceful atmosphere.",
		Category:    "Temple",
		Location:    Location{Lat: 13.7465, Lng: 100.4927, Address: "2 Sanamchai Road, Grand Palace Subdistrict, Bangkok"},
		Rating:      4.7,
		PriceRange:  PriceLow,
		Tags:        []string{"temple", "buddha", "massage", "culture", "historic"},
	},
	{
		ID:          "grand-palace",
		Title:       "Grand Palace",
		Description: "Historic royal palace complex and former residence of Thai kings. Home to the Emerald Buddha Temple (Wat Phra Kaew) with stunning traditional Thai architecture and intricate decorations.",
		Category:    "Historic Site",
		Location:    Location{Lat: 13.75, Lng: 100.4915, Address: "Na Phra Lan Road, Phra Borom Maha Ratchawang, Bangkok"},
		Rating:      4.6,
		PriceRange:  PriceMedium,
		Tags:        []string{"history", "architecture", "culture", "temple", "royal"},
	},
	{
		ID:          "chatuchak-market",
		Title:       "Chatuchak Weekend Market",
		Description: "One of the world's largest weekend markets with over 15,000 stalls selling everything from clothes and crafts to delicious street food. Perfect for shopping and experiencing local culture.",
		Category:    "Market",
		Location:    Location{Lat: 13.7998, Lng: 100.5502, Address: "587/10 Kamphaeng Phet 2 Road, Chatuchak, Bangkok"},
		Rating:      4.3,
		PriceRange:  PriceLow,
		Tags:        []string{"shopping", "food", "local", "weekend", "crafts"},
	},
	{
		ID:          "khao-san-road",
		Title:       "Khao San Road",
		Description: "Famous backpacker street known for vibrant nightlife, street food, budget accommodations, and shopping. The heart of Bangkok's backpacker scene with bars, restaurants, and travel agencies.",
		Category:    "Nightlife",
		Location:    Location{Lat: 13.759, Lng: 100.4977, Address: "Khao San Road, Talat Yot, Phra Nakhon, Bangkok"},
		Rating:      4.0,
		PriceRange:  PriceLow,
		Tags:        []string{"nightlife", "street food", "backpacker", "shopping", "bars"},
	},
	{
		ID:          "jim-thompson-house",
		Title:       "Jim Thompson House",
		Description: "Beautiful traditional Thai house museum showcasing Southeast Asian art and the story of American entrepreneur Jim Thompson who helped revive the Thai silk industry.",
		Category:    "Museum",
		Location:    Location{Lat: 13.7441, Lng: 100.5348, Address: "6 Soi Kasemsan 2, Rama 1 Road, Wang Mai, Bangkok"},
		Rating:      4.5,
		PriceRange:  PriceMedium,
		Tags:        []string{"museum", "art", "culture", "silk", "traditional"},
	},
	{
		ID:          "wat-arun",
		Title:       "Wat Arun (Temple of Dawn)",
		Description: "Iconic riverside temple known for its towering spire decorated with colorful porcelain and seashells. Offers stunning views of the Chao Phraya River, especially beautiful at sunset.",
		Category:    "Temple",
		Location:    Location{Lat: 13.7437, Lng: 100.4889, Address: "158 Wang Doem Road, Wat Arun, Bangkok Yai, Bangkok"},
		Rating:      4.6,
		PriceRange:  PriceLow,
		Tags:        []string{"temple", "river", "sunset", "architecture", "views"},
	},
	{
		ID:          "floating-market-damnoen",
		Title:       "Damnoen Saduak Floating Market",
		Description: "Traditional floating market where vendors sell fresh fruits, vegetables, and local food from boats. Experience authentic Thai culture and try delicious local specialties.",
		Category:    "Market",
		Location:    Location{Lat: 13.5221, Lng: 99.9551, Address: "Damnoen Saduak District, Ratchaburi Province (day trip from Bangkok)"},
		Rating:      4.2,
		PriceRange:  PriceMedium,
		Tags:        []string{"floating market", "food", "traditional", "boats", "day trip"},
	},
	{
		ID:          "lumpini-park",
		Title:       "Lumpini Park",
		Description: "Large green oasis in the heart of Bangkok perfect for jogging, tai chi, paddle boating, and escaping the city hustle. Popular spot for locals and tourists to relax and exercise.",
		Category:    "Park",
		Location:    Location{Lat: 13.7307, Lng: 100.5418, Address: "Rama IV Road, Pathum Wan District, Bangkok"},
		Rating:      4.4,
		PriceRange:  PriceLow,
		Tags:        []string{"park", "exercise", "nature", "relaxation", "outdoor"},
	},
	{
		ID:          "mbk-center",
		Title:       "MBK Center",
		Description: "Popular shopping mall known for electronics, fashion, souvenirs, and food court. Great place to shop for affordable goods and experience modern Bangkok shopping culture.",
		Category:    "Shopping",
		Location:    Location{Lat: 13.7441, Lng: 100.5300, Address: "444 Phaya Thai Road, Wang Mai, Pathum Wan, Bangkok"},
		Rating:      4.1,
		PriceRange:  PriceMedium,
		Tags:        []string{"shopping", "mall", "electronics", "fashion", "food court"},
	},
	{
		ID:          "chinatown-yaowarat",
		Title:       "Chinatown (Yaowarat Road)",
		Description: "Historic Chinese district famous for incredible street food, gold shops, traditional Chinese temples, and vibrant night markets. Food paradise with authentic Chinese-Thai cuisine.",
		Category:    "District",
		Location:    Location{Lat: 13.7392, Lng: 100.5095, Address: "Yaowarat Road, Samphanthawong District, Bangkok"},
		Rating:      4.5,
		PriceRange:  PriceLow,
		Tags:        []string{"chinatown", "street food", "traditional", "temples", "night market"},
	},
}

// Bangkok returns the compiled-in attraction corpus in display order.
// The returned slice is a copy and may be modified by the caller.
func Bangkok() []Attraction {
	out := make([]Attraction, len(bangkok))
	for i, a := range bangkok {
		a.Tags = append([]string(nil), a.Tags...)
		out[i] = a
	}
	return out
}
