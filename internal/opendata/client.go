// Package opendata fetches the school-holiday dataset published by
// rijksoverheid.nl.
package opendata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rbright/waybar-schoolholidays/internal/httpx"
	"github.com/rbright/waybar-schoolholidays/internal/schedule"
)

var ErrMarkupResponse = errors.New("API returned XML instead of JSON (check output=json)")

type Client struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

func (c Client) URL(schoolYear string) string {
	return fmt.Sprintf("%s/%s?output=json", c.BaseURL, schoolYear)
}

// Fetch downloads the payload for a "YYYY-YYYY" school year and returns the
// decoded JSON value, ready for schedule.Normalize.
func (c Client) Fetch(ctx context.Context, schoolYear string) (any, error) {
	if _, ok := schedule.ParseSchoolYear(schoolYear); !ok {
		return nil, fmt.Errorf("invalid school year %q", schoolYear)
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.UserAgent != "" {
		headers["User-Agent"] = c.UserAgent
	}

	body, err := httpx.Get(ctx, c.URL(schoolYear), headers, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch school holidays %s: %w", schoolYear, err)
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return nil, ErrMarkupResponse
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, fmt.Errorf("decode school holidays %s: %w", schoolYear, err)
	}
	return decoded, nil
}

// FetchSchedule fetches and normalizes in one step.
func (c Client) FetchSchedule(ctx context.Context, schoolYear string) ([]schedule.Period, error) {
	raw, err := c.Fetch(ctx, schoolYear)
	if err != nil {
		return nil, err
	}
	return schedule.Normalize(raw), nil
}
