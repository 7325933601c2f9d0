package transport

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Method is the configured request method policy.
type Method int

const (
	// Adaptive uses GET while the URL fits and POST beyond that.
	Adaptive Method = iota
	// Get always embeds the source in the URL.
	Get
	// Post always sends the source as the request body.
	Post
)

func (m Method) String() string {
	switch m {
	case Get:
		return "get"
	case Post:
		return "post"
	default:
		return "adaptive"
	}
}

// ParseMethod parses get, post or adaptive, case-insensitively.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "get":
		return Get, true
	case "post":
		return Post, true
	case "adaptive":
		return Adaptive, true
	default:
		return Adaptive, false
	}
}

// ResolveMethod parses s and falls back to Adaptive for unknown values,
// logging a warning. An empty value is the default and is not warned about.
func ResolveMethod(s string, log hclog.Logger) Method {
	if strings.TrimSpace(s) == "" {
		return Adaptive
	}
	m, ok := ParseMethod(s)
	if !ok && log != nil {
		log.Warn("invalid http method, must be one of get, post or adaptive; proceeding with adaptive", "value", s)
	}
	return m
}

// Choose returns the method to use for a URL of uriLength characters.
// Only Adaptive looks at the length; Get keeps using GET even when the URL
// is too long and the server may answer 414.
func Choose(configured Method, uriLength, maxURILength int) Method {
	switch configured {
	case Get:
		return Get
	case Post:
		return Post
	default:
		if uriLength > maxURILength {
			return Post
		}
		return Get
	}
}
