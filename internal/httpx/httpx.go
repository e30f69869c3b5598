package httpx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const maxRedirects = 5

var client = &fasthttp.Client{
	Name:                "waybar-schoolholidays",
	MaxResponseBodySize: 8 << 20,
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, truncate(e.Body, 220))
}

func IsStatus(err error, statusCode int) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == statusCode
}

// Get performs a GET request and returns the body of a 2xx response.
// Redirects are followed; the deadline is the earlier of ctx and timeout.
func Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	target := url
	for redirects := 0; ; redirects++ {
		req.Reset()
		resp.Reset()
		req.SetRequestURI(target)
		req.Header.SetMethod(fasthttp.MethodGet)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		if err := client.DoDeadline(req, resp, deadline); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		status := resp.StatusCode()
		if fasthttp.StatusCodeIsRedirect(status) {
			location := strings.TrimSpace(string(resp.Header.Peek(fasthttp.HeaderLocation)))
			if location == "" {
				return nil, &StatusError{StatusCode: status, Body: "redirect without location"}
			}
			if redirects >= maxRedirects {
				return nil, fmt.Errorf("too many redirects")
			}
			target = resolveLocation(req.URI(), location)
			continue
		}

		body := append([]byte(nil), resp.Body()...)
		if status < 200 || status >= 300 {
			return nil, &StatusError{StatusCode: status, Body: strings.TrimSpace(string(body))}
		}
		return body, nil
	}
}

func resolveLocation(base *fasthttp.URI, location string) string {
	next := fasthttp.AcquireURI()
	defer fasthttp.ReleaseURI(next)
	base.CopyTo(next)
	next.Update(location)
	return next.String()
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "…"
}
