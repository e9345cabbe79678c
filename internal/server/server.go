package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	catalog "github.com/hanpama/fieldplan/internal/catalog"
	eventbus "github.com/hanpama/fieldplan/internal/eventbus"
	events "github.com/hanpama/fieldplan/internal/events"
	executor "github.com/hanpama/fieldplan/internal/executor"
	reqid "github.com/hanpama/fieldplan/internal/reqid"
)

// Handler is an http.Handler projecting JSON documents onto catalog schemas.
// A POST to /{Type} with an object body returns one projected object; an array
// body is serialized in batch mode.
type Handler struct {
	cat *catalog.Catalog
	opt Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a projection handler serving the schemas of cat.
func New(cat *catalog.Catalog, opts ...Option) (*Handler, error) {
	if cat == nil {
		return nil, errors.New("server: nil catalog")
	}
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{cat: cat, opt: op}, nil
}

// Response is the body written for every request. Data holds the projected
// output produced before a failure, if any.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	typeName := strings.Trim(r.URL.Path, "/")
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r, Schema: typeName})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Schema: typeName, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}
	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, Response{Error: "method not allowed"}, h.opt.Pretty)
		return
	}

	s, ok := h.cat.Schema(typeName)
	if !ok {
		status = http.StatusNotFound
		writeJSON(w, status, Response{Error: "unknown type " + quote(typeName)}, h.opt.Pretty)
		return
	}

	src, many, err := parseBody(r, h.opt.MaxBodyBytes)
	if err != nil {
		status = http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, Response{Error: err.Error()}, h.opt.Pretty)
		return
	}

	data, err := executor.Execute(ctx, s, src, many)
	if err != nil {
		status = http.StatusUnprocessableEntity
		writeJSON(w, status, Response{Data: data, Error: err.Error()}, h.opt.Pretty)
		return
	}
	writeJSON(w, status, Response{Data: data}, h.opt.Pretty)
}

// ------------------ Request parsing ------------------

var errBodyTooLarge = errors.New("body too large")

// parseBody decodes a JSON object, or an array of objects for batch mode.
// Numbers are kept as json.Number so that Int fields keep their precision.
func parseBody(r *http.Request, maxBody int64) (src any, many bool, err error) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return nil, false, errors.New("unsupported Content-Type")
	}
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, errors.New("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, false, errBodyTooLarge
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var arr []map[string]any
		if err := decode(body, &arr); err != nil {
			return nil, false, err
		}
		return arr, true, nil
	}
	var obj map[string]any
	if err := decode(body, &obj); err != nil {
		return nil, false, err
	}
	if obj == nil {
		return nil, false, errors.New("expected a JSON object or array")
	}
	return obj, false, nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON")
	}
	return nil
}

// ------------------ Response formatting ------------------

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func quote(s string) string { b, _ := json.Marshal(s); return string(b) }

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := slices.Contains(opts.AllowedOrigins, "*")
	if !wildcard && !slices.Contains(opts.AllowedOrigins, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST,OPTIONS")
	}
}
