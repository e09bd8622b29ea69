package venue

type Category string

const (
	CategoryCafe       Category = "Cafe"
	CategoryRestaurant Category = "Restaurant"
	CategoryBar        Category = "Bar"
	CategoryPark       Category = "Park"
	CategoryActivity   Category = "Activity"
)

// PlaceholderImageURL and DefaultRating substitute for venues the places
// lookup could not enrich.
const (
	PlaceholderImageURL = "https://via.placeholder.com/400x300?text=Synq"
	DefaultRating       = "4.0"
)

// Suggestion is one enriched venue returned by getSynqSuggestions.
type Suggestion struct {
	Name     string `json:"name"`
	Rating   string `json:"rating"`
	ImageURL string `json:"imageUrl"`
	Location string `json:"location"`
	Address  string `json:"address"`
}

type SuggestionsRequest struct {
	Shared   []string `json:"shared"`
	Location string   `json:"location"`
	Category string   `json:"category"`
}

type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Placeholder builds the degraded entry used when per-venue enrichment fails.
func Placeholder(name, location string) Suggestion {
	return Suggestion{
		Name:     name,
		Rating:   DefaultRating,
		ImageURL: PlaceholderImageURL,
		Location: location,
	}
}
