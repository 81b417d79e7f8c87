package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"nhtsa-pipeline/internal/model"
	"nhtsa-pipeline/pkg/logger"
)

// DefaultBaseURL is the public NHTSA API host.
const DefaultBaseURL = "https://api.nhtsa.gov"

// UpstreamFormatError reports a response that lacks the expected results
// envelope on an endpoint where that is fatal for the run.
type UpstreamFormatError struct {
	Endpoint string
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("nhtsa %s: response has no results field", e.Endpoint)
}

// Client talks to the NHTSA products, complaints and recalls endpoints.
// All calls are sequential; the limiter paces outbound requests.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client for the given base URL. An empty base URL means
// the public API; requestsPerSecond <= 0 disables pacing.
func NewClient(baseURL string, requestsPerSecond float64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// envelope is the common NHTSA response shape. Results stays nil when the
// key is absent, which is distinct from an empty list.
type envelope struct {
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

// get fetches one endpoint and decodes the envelope. A non-200 status with
// an undecodable body yields an empty envelope rather than an error, so the
// caller's results-key check decides whether that is fatal.
func (c *Client) get(ctx context.Context, u string) (*envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if res.StatusCode != http.StatusOK {
			return &envelope{}, nil
		}
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	return &env, nil
}

// FetchMakes retrieves the set of makes with at least one record of the
// given issue type for the model year. Only the first page is captured;
// upstream pagination is a known limitation. A response without a results
// field is fatal for the run.
func (c *Client) FetchMakes(ctx context.Context, modelYear int, issueType model.IssueType) ([]string, error) {
	q := url.Values{}
	q.Set("modelYear", strconv.Itoa(modelYear))
	q.Set("issueType", string(issueType))
	u := fmt.Sprintf("%s/products/vehicle/makes?%s", c.baseURL, q.Encode())

	env, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if env.Results == nil {
		return nil, &UpstreamFormatError{Endpoint: "makes"}
	}

	var entries []struct {
		Make string `json:"make"`
	}
	if err := json.Unmarshal(env.Results, &entries); err != nil {
		return nil, &UpstreamFormatError{Endpoint: "makes"}
	}

	seen := make(map[string]bool, len(entries))
	makes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Make == "" || seen[e.Make] {
			continue
		}
		seen[e.Make] = true
		makes = append(makes, e.Make)
	}
	logger.Log.Infof("fetched %d makes for model year %d", len(makes), modelYear)
	return makes, nil
}

// FetchModels enumerates every (year, make, model) triple for the given
// makes, one request per make. A make whose response lacks a results field
// contributes nothing and does not abort the others.
func (c *Client) FetchModels(ctx context.Context, modelYear int, makes []string, issueType model.IssueType) ([]model.ModelRecord, error) {
	var records []model.ModelRecord
	for _, mk := range makes {
		q := url.Values{}
		q.Set("modelYear", strconv.Itoa(modelYear))
		q.Set("make", mk)
		q.Set("issueType", string(issueType))
		u := fmt.Sprintf("%s/products/vehicle/models?%s", c.baseURL, q.Encode())

		env, err := c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		if env.Results == nil {
			logger.Log.Infof("no models data for make %q, skipping", mk)
			continue
		}

		var entries []struct {
			ModelYear int    `json:"modelYear"`
			Make      string `json:"make"`
			Model     string `json:"model"`
		}
		if err := json.Unmarshal(env.Results, &entries); err != nil {
			logger.Log.Infof("unreadable models data for make %q, skipping", mk)
			continue
		}
		for _, e := range entries {
			records = append(records, model.ModelRecord{
				ModelYear: e.ModelYear,
				Make:      e.Make,
				Model:     e.Model,
			})
		}
	}
	logger.Log.Infof("enumerated %d models across %d makes", len(records), len(makes))
	return records, nil
}

type complaintEntry struct {
	ODINumber        int64   `json:"odiNumber"`
	Manufacturer     string  `json:"manufacturer"`
	Crash            bool    `json:"crash"`
	Fire             bool    `json:"fire"`
	NumberOfInjuries int     `json:"numberOfInjuries"`
	NumberOfDeaths   int     `json:"numberOfDeaths"`
	Summary          *string `json:"summary"`
}

// FetchComplaints retrieves raw complaint records, one request per model.
// A model whose response lacks a results field contributes zero records.
func (c *Client) FetchComplaints(ctx context.Context, models []model.ModelRecord) ([]model.ComplaintRecord, error) {
	var complaints []model.ComplaintRecord
	for _, m := range models {
		u := fmt.Sprintf("%s/complaints/complaintsByVehicle?%s", c.baseURL, vehicleQuery(m))

		env, err := c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		if env.Results == nil {
			logger.Log.Debugf("no complaints data for %d %s %s", m.ModelYear, m.Make, m.Model)
			continue
		}

		var entries []complaintEntry
		if err := json.Unmarshal(env.Results, &entries); err != nil {
			logger.Log.Debugf("unreadable complaints data for %d %s %s", m.ModelYear, m.Make, m.Model)
			continue
		}
		for _, e := range entries {
			complaints = append(complaints, model.ComplaintRecord{
				Make:             m.Make,
				Model:            m.Model,
				ModelYear:        m.ModelYear,
				ODINumber:        e.ODINumber,
				Manufacturer:     e.Manufacturer,
				Crash:            e.Crash,
				Fire:             e.Fire,
				NumberOfInjuries: e.NumberOfInjuries,
				NumberOfDeaths:   e.NumberOfDeaths,
				Summary:          e.Summary,
			})
		}
	}
	logger.Log.Infof("fetched %d complaints across %d models", len(complaints), len(models))
	return complaints, nil
}

type recallEntry struct {
	CampaignNumber   string  `json:"NHTSACampaignNumber"`
	Manufacturer     string  `json:"Manufacturer"`
	Component        string  `json:"Component"`
	Summary          string  `json:"Summary"`
	Consequence      *string `json:"Consequence"`
	Remedy           *string `json:"Remedy"`
	Notes            *string `json:"Notes"`
	ReportDate       *string `json:"ReportReceivedDate"`
	AffectedVehicles *int    `json:"AffectedVehicles"`
}

// FetchRecalls retrieves raw recall records, one request per model, with
// the same missing-results tolerance as FetchComplaints.
func (c *Client) FetchRecalls(ctx context.Context, models []model.ModelRecord) ([]model.RecallRecord, error) {
	var recalls []model.RecallRecord
	for _, m := range models {
		u := fmt.Sprintf("%s/recalls/recallsByVehicle?%s", c.baseURL, vehicleQuery(m))

		env, err := c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		if env.Results == nil {
			logger.Log.Debugf("no recalls data for %d %s %s", m.ModelYear, m.Make, m.Model)
			continue
		}

		var entries []recallEntry
		if err := json.Unmarshal(env.Results, &entries); err != nil {
			logger.Log.Debugf("unreadable recalls data for %d %s %s", m.ModelYear, m.Make, m.Model)
			continue
		}
		for _, e := range entries {
			recalls = append(recalls, model.RecallRecord{
				Make:             m.Make,
				Model:            m.Model,
				ModelYear:        m.ModelYear,
				CampaignNumber:   e.CampaignNumber,
				Manufacturer:     e.Manufacturer,
				Component:        e.Component,
				Summary:          e.Summary,
				Consequence:      e.Consequence,
				Remedy:           e.Remedy,
				Notes:            e.Notes,
				ReportDate:       e.ReportDate,
				AffectedVehicles: e.AffectedVehicles,
			})
		}
	}
	logger.Log.Infof("fetched %d recalls across %d models", len(recalls), len(models))
	return recalls, nil
}

func vehicleQuery(m model.ModelRecord) string {
	q := url.Values{}
	q.Set("make", m.Make)
	q.Set("model", m.Model)
	q.Set("modelYear", strconv.Itoa(m.ModelYear))
	return q.Encode()
}
