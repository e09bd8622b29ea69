package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"synqAPI/internal/ai"
	"synqAPI/internal/apperr"
	"synqAPI/internal/places"
	"synqAPI/internal/types/venue"
)

const maxSuggestions = 5

// TextGenerator is the single-shot model call the pipeline needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlaceSearcher enriches a venue name with rating/photo/address.
type PlaceSearcher interface {
	Search(ctx context.Context, name, location string) (*places.Place, error)
}

// SuggestionService runs the venue-suggestion pipeline: one model call for
// venue names, then a sequential places lookup per venue. A model or parse
// failure aborts the whole call; a per-venue lookup failure degrades that
// entry to a placeholder.
type SuggestionService struct {
	model  TextGenerator
	places PlaceSearcher
}

func NewSuggestionService(model TextGenerator, placeSearcher PlaceSearcher) *SuggestionService {
	return &SuggestionService{model: model, places: placeSearcher}
}

func (s *SuggestionService) GetSuggestions(ctx context.Context, req *venue.SuggestionsRequest) (*venue.SuggestionsResponse, error) {
	if req.Location == "" {
		return nil, apperr.New(apperr.InvalidArgument, "location is required")
	}
	if req.Category == "" {
		return nil, apperr.New(apperr.InvalidArgument, "category is required")
	}

	prompt := buildPrompt(req.Shared, req.Location, req.Category)
	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "venue suggestion model call failed", err)
	}

	names, err := ai.ParseNameList(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not parse venue suggestions", err)
	}
	if len(names) > maxSuggestions {
		names = names[:maxSuggestions]
	}

	suggestions := make([]venue.Suggestion, 0, len(names))
	for _, name := range names {
		place, err := s.places.Search(ctx, name, req.Location)
		if err != nil {
			log.Printf("Places lookup for %q failed, using placeholder: %v", name, err)
			suggestions = append(suggestions, venue.Placeholder(name, req.Location))
			continue
		}
		enriched := venue.Suggestion{
			Name:     name,
			Rating:   venue.DefaultRating,
			ImageURL: venue.PlaceholderImageURL,
			Location: req.Location,
			Address:  place.Address,
		}
		if place.Rating > 0 {
			enriched.Rating = fmt.Sprintf("%.1f", place.Rating)
		}
		if place.PhotoURL != "" {
			enriched.ImageURL = place.PhotoURL
		}
		suggestions = append(suggestions, enriched)
	}

	return &venue.SuggestionsResponse{Suggestions: suggestions}, nil
}

func buildPrompt(shared []string, location, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d real %s venues in %s for a spontaneous meetup between friends.\n", maxSuggestions, category, location)
	if len(shared) > 0 {
		fmt.Fprintf(&b, "Their shared interests: %s.\n", strings.Join(shared, ", "))
	}
	b.WriteString("Respond with only a JSON array of venue names, nothing else. ")
	b.WriteString(`Example: ["Venue One","Venue Two"]`)
	return b.String()
}
