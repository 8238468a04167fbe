// Package wikidata talks to the Wikidata API to find living public figures
// and to watch them for a recorded date of death.
package wikidata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrUpstream wraps every failure talking to Wikidata.
var ErrUpstream = errors.New("wikidata request failed")

const userAgent = "jeudelamort/1.0 (https://github.com/camden-git/jeudelamort)"

// Entity is one hit of wbsearchentities.
type Entity struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Display     struct {
		Label struct {
			Value string `json:"value"`
		} `json:"label"`
	} `json:"display"`
}

// Name prefers the label rendered in the requested language.
func (e Entity) Name() string {
	if e.Display.Label.Value != "" {
		return e.Display.Label.Value
	}
	return e.Label
}

type searchResponse struct {
	Search []Entity  `json:"search"`
	Error  *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type claimsResponse struct {
	Claims Claims    `json:"claims"`
	Error  *apiError `json:"error"`
}

type ClientOptions struct {
	BaseURL    string
	Language   string
	Timeout    time.Duration
	RPS        float64
	Logger     *logrus.Logger
	HTTPClient *http.Client
}

// Client is a rate limited, circuit broken Wikidata API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func NewClient(opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	language := opts.Language
	if language == "" {
		language = "fr"
	}
	burst := int(opts.RPS)
	if burst < 1 {
		burst = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wikidata",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("wikidata circuit breaker state changed")
		},
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    opts.BaseURL,
		language:   language,
		limiter:    rate.NewLimiter(rate.Limit(opts.RPS), burst),
		breaker:    cb,
		logger:     logger,
	}
}

// SearchEntities returns up to limit entities matching query, in Wikidata's
// relevance order.
func (c *Client) SearchEntities(ctx context.Context, query string, limit int) ([]Entity, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"language": {c.language},
		"uselang":  {c.language},
		"format":   {"json"},
		"search":   {query},
		"limit":    {strconv.Itoa(limit)},
	}
	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, resp.Error.Code, resp.Error.Info)
	}
	return resp.Search, nil
}

// GetClaims returns the statements of one entity.
func (c *Client) GetClaims(ctx context.Context, entityID string) (Claims, error) {
	params := url.Values{
		"action": {"wbgetclaims"},
		"entity": {entityID},
		"props":  {"value"},
		"format": {"json"},
	}
	var resp claimsResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, resp.Error.Code, resp.Error.Info)
	}
	if resp.Claims == nil {
		return Claims{}, nil
	}
	return resp.Claims, nil
}

func (c *Client) get(ctx context.Context, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		c.logger.WithError(err).WithField("action", params.Get("action")).Warn("wikidata request failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := json.Unmarshal(body.([]byte), dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}
	return nil
}
