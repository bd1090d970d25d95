package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }

// Load reads the document named by input and returns it as JSON ready for Parse.
//
// input may be a filesystem path or an http/https URL. YAML documents are
// converted to JSON. OpenAPI 3.x documents are down-converted to the Swagger
// 2.0 shape with kin-openapi; anything the converter cannot express as
// definitions and paths is dropped.
func Load(ctx context.Context, input string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	raw, location, err := read(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	data, err := normalizeDocument(raw)
	if err != nil {
		var se *SpecError
		if errors.As(err, &se) && se.Location == "" {
			se.Location = location
		}
		return nil, err
	}
	return data, nil
}

// LoadDocument is Load followed by Parse.
func LoadDocument(ctx context.Context, input string, opts ...Option) (*Document, []Diagnostic, error) {
	data, err := Load(ctx, input, opts...)
	if err != nil {
		return nil, nil, err
	}
	doc, diags, err := Parse(data)
	if err != nil {
		var se *SpecError
		if errors.As(err, &se) && se.Location == "" {
			se.Location = input
		}
		return nil, diags, err
	}
	return doc, diags, nil
}

// IsURL reports whether input is treated as a remote document.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func read(ctx context.Context, input string, settings Settings) ([]byte, string, error) {
	if IsURL(input) {
		u, _ := url.Parse(input)
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, input, &SpecError{Code: InputError, Message: "spec: file:// URLs are not supported, pass the path instead", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, input, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, abs, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, nil
}

func normalizeDocument(raw []byte) ([]byte, error) {
	if json.Valid(raw) {
		var probe struct {
			OpenAPI any `json:"openapi"`
		}
		if err := json.Unmarshal(raw, &probe); err == nil && isOpenAPI3(probe.OpenAPI) {
			return convertV3ToV2(raw)
		}
		return raw, nil
	}

	var root any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, &SpecError{Code: MalformedDocument, Message: fmt.Sprintf("parse document: %v", err), Cause: err}
	}
	if m, ok := root.(map[string]any); ok && isOpenAPI3(m["openapi"]) {
		return convertV3ToV2(raw)
	}
	data, err := json.Marshal(jsonCompatible(root))
	if err != nil {
		return nil, &SpecError{Code: MalformedDocument, Message: fmt.Sprintf("convert YAML to JSON: %v", err), Cause: err}
	}
	return data, nil
}

func isOpenAPI3(v any) bool {
	s, _ := v.(string)
	return strings.HasPrefix(strings.TrimSpace(s), "3.")
}

func convertV3ToV2(raw []byte) ([]byte, error) {
	loader := openapi3.NewLoader()
	doc3, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("load OpenAPI 3 document: %v", err), Cause: err}
	}
	doc2, err := openapi2conv.FromV3(doc3)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v3→v2: %v", err), Cause: err}
	}
	data, err := json.Marshal(doc2)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("encode converted document: %v", err), Cause: err}
	}
	return data, nil
}

// jsonCompatible rewrites YAML-decoded values so encoding/json accepts them.
// Mapping keys that are not strings (e.g. unquoted status codes) are printed.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jsonCompatible(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(k)] = jsonCompatible(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonCompatible(e)
		}
		return out
	default:
		return v
	}
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err = io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
