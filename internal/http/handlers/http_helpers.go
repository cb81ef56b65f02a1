package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/school-inventory/internal/auth"
	"github.com/rogerio-castellano/school-inventory/internal/records"
	"github.com/rogerio-castellano/school-inventory/internal/workflow"
	"github.com/rs/zerolog/log"
)

type contextKey string

const claimsKey = contextKey("claims")

// WithClaims stores the verified token claims of the caller.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaimsFromContext(r *http.Request) (*auth.Claims, error) {
	c, ok := r.Context().Value(claimsKey).(*auth.Claims)
	if !ok || c == nil {
		return nil, errors.New("no claims in context")
	}
	return c, nil
}

func GetRoleFromContext(r *http.Request) (string, error) {
	c, err := GetClaimsFromContext(r)
	if err != nil {
		return "", err
	}
	return c.Role, nil
}

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// decodeAndValidate reads the body into dst and checks its validate tags.
// It answers the request itself and returns false when the body is unusable.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSON(w, r, dst); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return false
	}
	if errs := validateStruct(dst); len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return false
	}
	return true
}

// writeError maps a failure from the record layer onto a status code.
func writeError(w http.ResponseWriter, err error, what string) {
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusBadRequest, fromRecordErrors(verr))
	case errors.Is(err, records.ErrNotFound):
		http.Error(w, what+" not found", http.StatusNotFound)
	case errors.Is(err, workflow.ErrTransitionNotAllowed):
		respond(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, records.ErrBackend):
		respond(w, http.StatusBadGateway, ErrorResponse{Error: "could not reach the record service, try again", Retry: true})
	default:
		log.Error().Err(err).Str("resource", what).Msg("unexpected failure")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid "+what+" ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// confirmed refuses a destructive call that was not explicitly confirmed.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); ok {
		return true
	}
	respond(w, http.StatusPreconditionRequired, ErrorResponse{Error: "deletion must be confirmed with confirm=true"})
	return false
}

// queryTime undoes the '+' to ' ' decoding of RFC 3339 offsets in query strings.
func queryTime(r *http.Request, key string) string {
	s := r.URL.Query().Get(key)
	if i := strings.LastIndexByte(s, ' '); i > 0 && len(s)-i == 6 {
		s = s[:i] + "+" + s[i+1:]
	}
	return s
}

func parseIntPtr(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
