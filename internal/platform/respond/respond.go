// Package respond renders router-level failures (unknown paths, unsupported
// methods, panics) as RFC 9457 problem documents in the same shape huma uses
// for operation errors, negotiating JSON or CBOR from the Accept header.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/pipeline-greeting/internal/platform/logging"
)

const (
	schemaPath = "/schemas/ErrorModel.json"

	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound          = "resource not found"
	msgInternalServerErr = "internal server error"
)

// problemDocument mirrors huma.ErrorModel plus the $schema link huma adds to its own responses.
type problemDocument struct {
	Schema string              `json:"$schema,omitempty"`
	Title  string              `json:"title,omitempty"`
	Status int                 `json:"status,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

// NotFoundHandler emits a 404 problem document.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler emits a 405 problem document and lists the methods
// the matched path does support in the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		WriteProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// Recoverer converts panics into 500 problem documents. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection, and a response that has
// already started is left as is.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				} else if errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", err, zap.ByteString("stack", debug.Stack()))
				if rw.wroteHeader {
					return
				}
				WriteProblem(w, r, http.StatusInternalServerError, msgInternalServerErr)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// WriteProblem writes a problem document for status with the given detail.
// Client errors are logged at warning level and server errors at error level.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	schemaURL := schemaLink(r)
	doc := problemDocument{
		Schema: schemaURL,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		applog.LogError(r.Context(), detail, nil, fields...)
	} else {
		applog.LogWarn(r.Context(), detail, fields...)
	}

	contentType := contentTypeProblemJSON
	var (
		body []byte
		err  error
	)
	if acceptsCBOR(r.Header.Get("Accept")) {
		contentType = contentTypeProblemCBOR
		body, err = cbor.Marshal(doc)
	} else {
		body, err = json.Marshal(doc)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem document", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Link", "<"+schemaURL+`>; rel="describedBy"`)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		applog.LogError(r.Context(), "failed to write problem document", err)
	}
}

func schemaLink(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + schemaPath
}

// acceptsCBOR reports whether the Accept header prefers a CBOR representation.
// The highest q-value wins; on a tie the more specific problem+ type wins, and a
// full tie falls back to JSON. Wildcards never select CBOR.
func acceptsCBOR(accept string) bool {
	if accept == "" {
		return false
	}
	var bestCBOR, bestJSON mediaPreference
	for _, part := range strings.Split(accept, ",") {
		pref, ok := parseMediaRange(part)
		if !ok || pref.q <= 0 {
			continue
		}
		switch pref.mediaType {
		case "application/cbor", contentTypeProblemCBOR:
			bestCBOR = bestCBOR.max(pref)
		case "application/json", contentTypeProblemJSON:
			bestJSON = bestJSON.max(pref)
		}
	}
	switch {
	case bestCBOR.q == 0:
		return false
	case bestJSON.q == 0:
		return true
	case bestCBOR.q != bestJSON.q:
		return bestCBOR.q > bestJSON.q
	default:
		return bestCBOR.specificity > bestJSON.specificity
	}
}

type mediaPreference struct {
	mediaType   string
	q           float64
	specificity int
}

func (p mediaPreference) max(other mediaPreference) mediaPreference {
	if other.q > p.q || (other.q == p.q && other.specificity > p.specificity) {
		return other
	}
	return p
}

func parseMediaRange(raw string) (mediaPreference, bool) {
	segments := strings.Split(raw, ";")
	mediaType := strings.ToLower(strings.TrimSpace(segments[0]))
	if mediaType == "" {
		return mediaPreference{}, false
	}
	pref := mediaPreference{mediaType: mediaType, q: 1, specificity: 1}
	if strings.Contains(mediaType, "+") {
		pref.specificity = 2
	}
	for _, param := range segments[1:] {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		if q, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && q >= 0 && q <= 1 {
			pref.q = q
		}
	}
	return pref, true
}

// allowedMethods inspects chi's routing context to discover allowed methods.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		} else {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// responseWriter records whether the response has started so Recoverer does not
// append a problem document to a partially written body.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
