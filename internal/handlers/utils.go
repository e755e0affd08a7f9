package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrolink/apiserver/internal/authz"
	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

var validate = validator.New()

// ErrorResponse is the JSON payload returned for every failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

// principalFromRequest resolves the authenticated principal from the
// JWT subject stored in the request context. The role is always read
// back from the user store so role changes take effect immediately.
func principalFromRequest(r *http.Request, users *services.UserService) (authz.Principal, error) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return authz.Principal{}, err
	}
	user, err := users.GetByID(r.Context(), userID)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{ID: user.ID, Role: user.Role}, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps the service error taxonomy onto HTTP status
// codes: missing records are 404, capability violations 403, lifecycle
// and stock violations 400. Anything else is a 500 with fallback as
// the message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, authz.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, "quantity exceeds available stock")
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrTransporterRequired),
		errors.Is(err, services.ErrNotTransporter):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parseIDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request")
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
