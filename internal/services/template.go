package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidEndpoint indicates an endpoint that cannot be parsed into a
// template. Registration rejects such endpoints outright.
var ErrInvalidEndpoint = errors.New("skill service: invalid endpoint")

// EndpointTemplate is the typed form of a skill's endpoint string. A template
// holds at most one ":placeholder" path segment; the placeholder position is
// resolved once, at registration time, instead of pattern-matching the raw
// string on every call.
type EndpointTemplate struct {
	raw         string
	prefix      string
	placeholder string // name without the leading colon, "" when absent
	suffix      string
}

// ParseEndpointTemplate validates and splits a skill endpoint. The endpoint
// must be an absolute http(s) URL. More than one placeholder segment is
// rejected.
func ParseEndpointTemplate(endpoint string) (EndpointTemplate, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return EndpointTemplate{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return EndpointTemplate{}, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidEndpoint, endpoint)
	}
	if parsed.Host == "" {
		return EndpointTemplate{}, fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, endpoint)
	}

	tmpl := EndpointTemplate{raw: endpoint}

	segments := strings.Split(parsed.Path, "/")
	placeholderAt := -1
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") || len(segment) < 2 {
			continue
		}
		if placeholderAt >= 0 {
			return EndpointTemplate{}, fmt.Errorf("%w: %q has more than one placeholder", ErrInvalidEndpoint, endpoint)
		}
		placeholderAt = i
		tmpl.placeholder = segment[1:]
	}

	if placeholderAt < 0 {
		tmpl.prefix = endpoint
		return tmpl, nil
	}

	// Split at the recorded segment index rather than searching the raw
	// string: the marker text can also occur earlier in the URL (a host
	// "localhost:80" against a ":80" placeholder, or a literal segment
	// containing the placeholder name).
	tmpl.prefix = parsed.Scheme + "://" + parsed.Host + strings.Join(segments[:placeholderAt], "/") + "/"
	if after := strings.Join(segments[placeholderAt+1:], "/"); after != "" {
		tmpl.suffix = "/" + after
	}
	if parsed.RawQuery != "" {
		tmpl.suffix += "?" + parsed.RawQuery
	}
	return tmpl, nil
}

// HasPlaceholder reports whether the template expects a call parameter.
func (t EndpointTemplate) HasPlaceholder() bool {
	return t.placeholder != ""
}

// Placeholder returns the placeholder name, without the leading colon.
func (t EndpointTemplate) Placeholder() string {
	return t.placeholder
}

// Expand substitutes the URL-encoded parameter into the placeholder segment.
// Templates without a placeholder ignore the parameter; templates with one
// keep the raw placeholder when no parameter is supplied, matching how an
// unparameterised call reaches the skill server.
func (t EndpointTemplate) Expand(param string) string {
	if t.placeholder == "" || param == "" {
		return t.raw
	}
	return t.prefix + url.PathEscape(param) + t.suffix
}
