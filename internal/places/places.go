package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"synqAPI/internal/httpclient"
)

const defaultSearchURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
const photoURLFormat = "https://maps.googleapis.com/maps/api/place/photo?maxwidth=400&photo_reference=%s&key=%s"

// Place is the slice of a places result the suggestion pipeline needs.
type Place struct {
	Name     string
	Rating   float64
	PhotoURL string
	Address  string
}

// Service performs text searches against the places API.
type Service struct {
	client   *httpclient.Client
	endpoint string
	apiKey   string
}

func NewService(client *httpclient.Client) (*Service, error) {
	apiKey := os.Getenv("PLACES_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("PLACES_API_KEY environment variable is not set")
	}
	endpoint := os.Getenv("PLACES_SEARCH_URL")
	if endpoint == "" {
		endpoint = defaultSearchURL
	}
	return &Service{client: client, endpoint: endpoint, apiKey: apiKey}, nil
}

func NewServiceWithEndpoint(client *httpclient.Client, endpoint, apiKey string) *Service {
	return &Service{client: client, endpoint: endpoint, apiKey: apiKey}
}

type searchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string  `json:"name"`
		Rating           float64 `json:"rating"`
		FormattedAddress string  `json:"formatted_address"`
		Photos           []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

// Search looks up a single venue by name near a location string and returns
// the top result.
func (s *Service) Search(ctx context.Context, name, location string) (*Place, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("%s %s", name, location))
	q.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("places returned %d: %s", resp.StatusCode, msg)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		return nil, fmt.Errorf("places status %s for %q", out.Status, name)
	}

	top := out.Results[0]
	place := &Place{
		Name:    top.Name,
		Rating:  top.Rating,
		Address: top.FormattedAddress,
	}
	if len(top.Photos) > 0 && top.Photos[0].PhotoReference != "" {
		place.PhotoURL = fmt.Sprintf(photoURLFormat, top.Photos[0].PhotoReference, s.apiKey)
	}
	return place, nil
}
