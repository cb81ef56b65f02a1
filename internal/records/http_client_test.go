package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newPlatform(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(HTTPConfig{BaseURL: srv.URL + "/", ProjectID: "proj-1", PublicKey: "pk-1"})
}

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestHTTPClient_FetchRecords(t *testing.T) {
	var gotQuery Query
	c := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tables/inventory/records/fetch" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Project-Id") != "proj-1" || r.Header.Get("X-Public-Key") != "pk-1" {
			t.Errorf("credentials were not forwarded: %v", r.Header)
		}
		json.NewDecoder(r.Body).Decode(&gotQuery)
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"Id": 1, "Name": "Pencils", "quantity": 5},
				{"Id": 2, "Name": "Erasers", "quantity": 0},
			},
		})
	})

	q := Query{Where: []Condition{{FieldName: "category", Operator: OpExactMatch, Value: "Writing"}}}
	recs, err := c.FetchRecords(context.Background(), TableInventory, q)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(recs) != 2 || recs[1].ID() != 2 {
		t.Errorf("unexpected records: %v", recs)
	}
	if len(gotQuery.Where) != 1 || gotQuery.Where[0].FieldName != "category" {
		t.Errorf("query was not sent: %+v", gotQuery)
	}
}

func TestHTTPClient_UnsuccessfulEnvelope(t *testing.T) {
	c := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": false, "message": "quota exceeded"})
	})

	_, err := c.FetchRecords(context.Background(), TableInventory, Query{})
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected platform message in error, got %v", err)
	}
}

func TestHTTPClient_GetRecordByID_NotFound(t *testing.T) {
	c := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "message": "not found"})
	})

	if _, err := c.GetRecordByID(context.Background(), TableRequests, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPClient_CreateRecord_FieldErrors(t *testing.T) {
	c := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"results": []map[string]any{{
				"success": false,
				"errors": []map[string]any{
					{"fieldLabel": "quantity", "message": "must be a number"},
					{"fieldLabel": "Name", "message": "is required"},
				},
			}},
		})
	})

	_, err := c.CreateRecord(context.Background(), TableInventory, Record{"quantity": "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 || verr.Fields[0].Field != "quantity" {
		t.Errorf("unexpected field errors: %+v", verr.Fields)
	}
}

func TestHTTPClient_UpdateRecord(t *testing.T) {
	c := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		var body struct {
			Records []map[string]any `json:"records"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Records) != 1 || body.Records[0]["Id"] != float64(3) {
			t.Errorf("expected record id 3 in body, got %v", body.Records)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"results": []map[string]any{{"success": true, "data": map[string]any{"Id": 3, "status": "approved"}}},
		})
	})

	rec, err := c.UpdateRecord(context.Background(), TableRequests, 3, Record{"status": "approved"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if rec["status"] != "approved" || rec.ID() != 3 {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestHTTPClient_DeleteRecord_ResultNotFound(t *testing.T) {
	c := newPlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"results": []map[string]any{{"success": false, "code": 404, "message": "Record does not exist"}},
		})
	})

	if err := c.DeleteRecord(context.Background(), TableCategories, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
