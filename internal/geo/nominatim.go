package geo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rbright/waybar-schoolholidays/internal/httpx"
)

// Place is the administrative area a position falls in.
type Place struct {
	Province     string
	Municipality string
	DisplayName  string
}

type Geocoder struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		State        string `json:"state"`
		Province     string `json:"province"`
		Municipality string `json:"municipality"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
	} `json:"address"`
}

func (g Geocoder) Reverse(ctx context.Context, position Position) (Place, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(position.Latitude, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(position.Longitude, 'f', 6, 64))
	query.Set("zoom", "10")
	query.Set("addressdetails", "1")

	headers := map[string]string{
		"Accept":          "application/json",
		"Accept-Language": "nl",
	}
	if g.UserAgent != "" {
		headers["User-Agent"] = g.UserAgent
	}

	body, err := httpx.Get(ctx, g.BaseURL+"?"+query.Encode(), headers, g.Timeout)
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode: %w", err)
	}
	return parsePlace(body)
}

func parsePlace(raw []byte) (Place, error) {
	var response reverseResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return Place{}, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	if strings.TrimSpace(response.Error) != "" {
		return Place{}, fmt.Errorf("reverse geocode: %s", strings.TrimSpace(response.Error))
	}

	address := response.Address
	return Place{
		Province:     firstNonEmpty(address.State, address.Province),
		Municipality: firstNonEmpty(address.Municipality, address.City, address.Town, address.Village),
		DisplayName:  strings.TrimSpace(response.DisplayName),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
