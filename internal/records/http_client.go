package records

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPConfig holds the hosted platform credentials. They are forwarded as
// headers and never interpreted here.
type HTTPConfig struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// HTTPClient is a RecordClient backed by the hosted platform REST API.
type HTTPClient struct {
	cfg  HTTPConfig
	http *http.Client
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPClient{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

type platformError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

type platformResult struct {
	Success bool            `json:"success"`
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  []platformError `json:"errors,omitempty"`
	Data    Record          `json:"data,omitempty"`
}

type platformResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    json.RawMessage  `json:"data,omitempty"`
	Results []platformResult `json:"results,omitempty"`
}

func (c *HTTPClient) FetchRecords(ctx context.Context, table string, q Query) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodPost, c.tableURL(table, "fetch"), q)
	if err != nil {
		return nil, err
	}

	out := []Record{}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return out, nil
	}
	if err := decodeJSON(resp.Data, &out); err != nil {
		return nil, backendError("decode %s records: %v", table, err)
	}
	return out, nil
}

func (c *HTTPClient) GetRecordByID(ctx context.Context, table string, id int) (Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.tableURL(table, strconv.Itoa(id)), nil)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, ErrNotFound
	}
	var r Record
	if err := decodeJSON(resp.Data, &r); err != nil {
		return nil, backendError("decode %s record %d: %v", table, id, err)
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, table string, fields Record) (Record, error) {
	body := map[string]any{"records": []Record{fields}}
	resp, err := c.do(ctx, http.MethodPost, c.tableURL(table), body)
	if err != nil {
		return nil, err
	}
	return firstResult(table, resp)
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, table string, id int, fields Record) (Record, error) {
	r := fields.Clone()
	r[IDField] = id
	body := map[string]any{"records": []Record{r}}
	resp, err := c.do(ctx, http.MethodPut, c.tableURL(table), body)
	if err != nil {
		return nil, err
	}
	return firstResult(table, resp)
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, table string, id int) error {
	body := map[string]any{"RecordIds": []int{id}}
	resp, err := c.do(ctx, http.MethodDelete, c.tableURL(table), body)
	if err != nil {
		return err
	}
	_, err = firstResult(table, resp)
	return err
}

func (c *HTTPClient) tableURL(table string, parts ...string) string {
	segments := append([]string{c.cfg.BaseURL, "tables", url.PathEscape(table), "records"}, parts...)
	return strings.Join(segments, "/")
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body any) (*platformResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, backendError("encode request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, backendError("build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Project-Id", c.cfg.ProjectID)
	req.Header.Set("X-Public-Key", c.cfg.PublicKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, backendError("%s %s: %v", method, target, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	var pr platformResponse
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&pr); err != nil {
		return nil, backendError("%s %s: status %d: %v", method, target, res.StatusCode, err)
	}
	if res.StatusCode >= 300 || !pr.Success {
		msg := pr.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, backendError("%s", msg)
	}
	return &pr, nil
}

// firstResult unwraps the per-record results of a create, update or delete.
func firstResult(table string, resp *platformResponse) (Record, error) {
	if len(resp.Results) == 0 {
		return nil, backendError("no records were affected")
	}
	res := resp.Results[0]
	if res.Success {
		return res.Data, nil
	}
	if res.Code == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if len(res.Errors) > 0 {
		verr := &ValidationError{Table: table}
		for _, e := range res.Errors {
			verr.Fields = append(verr.Fields, FieldError{Field: e.FieldLabel, Message: e.Message})
		}
		return nil, verr
	}
	return nil, backendError("%s", res.Message)
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
