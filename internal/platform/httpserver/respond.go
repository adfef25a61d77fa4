package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	datasetdomainerrors "lyceum/contexts/catalog/dataset-service/domain/errors"
	productdomainerrors "lyceum/contexts/catalog/product-service/domain/errors"
	accountdomainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	admindomainerrors "lyceum/contexts/internal-ops/admin-dashboard-service/domain/errors"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeInvalid(w http.ResponseWriter, details []validation.FieldError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Details: details})
}

// writeDomainError is the single outcome-to-response table. Anything not
// listed is an internal failure: logged with its cause, never echoed.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var deny *gate.DenyError
	switch {
	case errors.As(err, &deny) && errors.Is(err, gate.ErrNotFound):
		writeError(w, http.StatusNotFound, gate.NotFoundMessage(deny.Resource))
	case errors.Is(err, gate.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, gate.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")

	case errors.Is(err, productdomainerrors.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, datasetdomainerrors.ErrDatasetNotFound):
		writeError(w, http.StatusNotFound, "Dataset not found")
	case errors.Is(err, datasetdomainerrors.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, accountdomainerrors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")

	case errors.Is(err, accountdomainerrors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, accountdomainerrors.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, productdomainerrors.ErrAlreadyOwned):
		writeError(w, http.StatusConflict, "Product already purchased")
	case errors.Is(err, productdomainerrors.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, "Idempotency key reused with a different request")

	case errors.Is(err, productdomainerrors.ErrIdempotencyKeyRequired):
		writeInvalid(w, []validation.FieldError{{Field: "Idempotency-Key", Detail: "header is required"}})
	case errors.Is(err, productdomainerrors.ErrSelfPurchase):
		writeInvalid(w, []validation.FieldError{{Field: "product_id", Detail: "cannot purchase your own product"}})
	case errors.Is(err, accountdomainerrors.ErrSelfRoleChange):
		writeInvalid(w, []validation.FieldError{{Field: "user_id", Detail: "cannot change your own role"}})
	case errors.Is(err, accountdomainerrors.ErrInvalidRequest),
		errors.Is(err, productdomainerrors.ErrInvalidRequest),
		errors.Is(err, datasetdomainerrors.ErrInvalidRequest),
		errors.Is(err, admindomainerrors.ErrInvalidRequest):
		writeInvalid(w, validation.Details(err))

	default:
		s.logger.ErrorContext(r.Context(), "internal server error",
			"event", "http_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "transport",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// readJSON decodes one JSON object into dst, rejecting unknown fields and
// trailing data, then runs struct validation. It writes the 400 itself and
// reports false on failure.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeInvalid(w, []validation.FieldError{decodeDetail(err)})
		return false
	}
	if dec.More() {
		writeInvalid(w, []validation.FieldError{{Field: "body", Detail: "must contain a single JSON object"}})
		return false
	}
	if details := validation.Struct(dst); len(details) > 0 {
		writeInvalid(w, details)
		return false
	}
	return true
}

func decodeDetail(err error) validation.FieldError {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return validation.FieldError{Field: "body", Detail: "is required"}
	case errors.As(err, &typeErr):
		return validation.FieldError{Field: typeErr.Field, Detail: "must be a " + typeErr.Type.String()}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return validation.FieldError{Field: "body", Detail: "must be valid JSON"}
	case errors.As(err, &maxErr):
		return validation.FieldError{Field: "body", Detail: "must not exceed " + strconv.FormatInt(maxErr.Limit, 10) + " bytes"}
	default:
		// json: unknown field "x"
		return validation.FieldError{Field: "body", Detail: err.Error()}
	}
}

// queryInt parses an optional integer query parameter. Missing means 0.
func queryInt(r *http.Request, name string) (int, *validation.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, &validation.FieldError{Field: name, Detail: "must be a non-negative integer"}
	}
	return value, nil
}

// pageParams reads page and limit, writing a 400 on malformed input.
func pageParams(w http.ResponseWriter, r *http.Request) (page int, limit int, ok bool) {
	var details []validation.FieldError
	page, pageErr := queryInt(r, "page")
	if pageErr != nil {
		details = append(details, *pageErr)
	}
	limit, limitErr := queryInt(r, "limit")
	if limitErr != nil {
		details = append(details, *limitErr)
	}
	if len(details) > 0 {
		writeInvalid(w, details)
		return 0, 0, false
	}
	return page, limit, true
}

func principalOf(r *http.Request) *gate.Principal {
	return gate.PrincipalFromContext(r.Context())
}
