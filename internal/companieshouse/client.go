package companieshouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Companies House REST client. The API uses the key as
// a basic-auth username with an empty password.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var (
	ErrNotConfigured = errors.New("companieshouse: api key not configured")
	ErrNotFound      = errors.New("companieshouse: not found")
)

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type Company struct {
	CompanyNumber string  `json:"company_number"`
	CompanyName   string  `json:"company_name"`
	CompanyStatus string  `json:"company_status"`
	CompanyType   string  `json:"type,omitempty"`
	DateOfCreation string `json:"date_of_creation,omitempty"`
	RegisteredOfficeAddress Address `json:"registered_office_address"`
}

type Address struct {
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

func (a Address) String() string {
	parts := []string{}
	for _, p := range []string{a.AddressLine1, a.AddressLine2, a.Locality, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type SearchResult struct {
	Title         string  `json:"title"`
	CompanyNumber string  `json:"company_number"`
	CompanyStatus string  `json:"company_status"`
	AddressSnippet string `json:"address_snippet,omitempty"`
}

type searchResponse struct {
	Items      []SearchResult `json:"items"`
	TotalItems int            `json:"total_results"`
}

type Officer struct {
	Name        string `json:"name"`
	OfficerRole string `json:"officer_role"`
	AppointedOn string `json:"appointed_on,omitempty"`
	ResignedOn  string `json:"resigned_on,omitempty"`
}

type officersResponse struct {
	Items []Officer `json:"items"`
}

// SearchCompanies searches the register by name.
func (c *Client) SearchCompanies(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("items_per_page", strconv.Itoa(limit))

	var out searchResponse
	if err := c.get(ctx, "/search/companies?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetCompany fetches a company profile by its registration number.
func (c *Client) GetCompany(ctx context.Context, number string) (*Company, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, fmt.Errorf("company number is required")
	}
	var out Company
	if err := c.get(ctx, "/company/"+url.PathEscape(number), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOfficers lists a company's officers.
func (c *Client) GetOfficers(ctx context.Context, number string) ([]Officer, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	var out officersResponse
	if err := c.get(ctx, "/company/"+url.PathEscape(number)+"/officers", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, "")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("companieshouse request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode >= 400:
		return fmt.Errorf("companieshouse: status %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(dst)
}
