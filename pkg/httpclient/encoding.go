package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Encoding selects how Post serializes its data argument.
type Encoding int

const (
	// EncodingJSON marshals data as JSON and forces Content-Type application/json.
	EncodingJSON Encoding = iota
	// EncodingForm percent-encodes data as key=value pairs joined by '&'.
	EncodingForm
	// EncodingMultipart forwards a pre-built multipart payload unchanged.
	EncodingMultipart
)

const (
	ContentTypeJSON      = "application/json"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data;charset=UTF-8"

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
)

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingForm:
		return "form"
	case EncodingMultipart:
		return "multipart"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ParseEncoding maps a name ("json", "form", "multipart") to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return EncodingJSON, nil
	case "form", "urlencoded":
		return EncodingForm, nil
	case "multipart":
		return EncodingMultipart, nil
	default:
		return EncodingJSON, fmt.Errorf("unknown encoding %q", name)
	}
}

// EncodingFromContentType applies the legacy Content-Type rules: a value
// containing application/x-www-form-urlencoded selects EncodingForm, the exact
// value multipart/form-data;charset=UTF-8 selects EncodingMultipart, and
// anything else selects EncodingJSON.
func EncodingFromContentType(ct string) Encoding {
	switch {
	case strings.Contains(ct, ContentTypeForm):
		return EncodingForm
	case ct == ContentTypeMultipart:
		return EncodingMultipart
	default:
		return EncodingJSON
	}
}

// PostOption configures a single Post call.
type PostOption func(*postConfig)

type postConfig struct {
	encoding Encoding
	headers  map[string]string
}

// WithEncoding selects the body encoding.
func WithEncoding(enc Encoding) PostOption {
	return func(c *postConfig) { c.encoding = enc }
}

// WithHeaders adds request headers. The map is copied, never mutated.
func WithHeaders(headers map[string]string) PostOption {
	return func(c *postConfig) {
		for k, v := range headers {
			setHeader(c.headers, k, v)
		}
	}
}

// WithContentType sets the Content-Type header and selects the encoding
// with EncodingFromContentType.
func WithContentType(ct string) PostOption {
	return func(c *postConfig) {
		setHeader(c.headers, headerContentType, ct)
		c.encoding = EncodingFromContentType(ct)
	}
}

func newPostConfig(opts []PostOption) postConfig {
	cfg := postConfig{encoding: EncodingJSON, headers: make(map[string]string)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// encodeBody builds the request body for enc and normalizes Content-Type in headers.
func encodeBody(enc Encoding, data any, headers map[string]string) (any, error) {
	switch enc {
	case EncodingForm:
		params, err := formParams(data)
		if err != nil {
			return nil, err
		}
		if headerValue(headers, headerContentType) == "" {
			setHeader(headers, headerContentType, ContentTypeForm)
		}
		return params.Encode(), nil
	case EncodingMultipart:
		switch data.(type) {
		case []byte, string, io.Reader:
		default:
			return nil, fmt.Errorf("%w: multipart encoding expects a pre-built payload, got %T", ErrUnsupportedBody, data)
		}
		if headerValue(headers, headerContentType) == "" {
			setHeader(headers, headerContentType, ContentTypeMultipart)
		}
		return data, nil
	default:
		setHeader(headers, headerContentType, ContentTypeJSON)
		if data == nil {
			data = Params{}
		}
		body, err := marshalJSON(data)
		if err != nil {
			return nil, fmt.Errorf("marshal json body: %w", err)
		}
		return body, nil
	}
}

// setHeader replaces any case variant of key with the canonical form.
func setHeader(headers map[string]string, key, value string) {
	canonical := http.CanonicalHeaderKey(strings.TrimSpace(key))
	for k := range headers {
		if strings.EqualFold(k, canonical) {
			delete(headers, k)
		}
	}
	headers[canonical] = value
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
