package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// Address is the listen address.
	// Default: ":8080".
	Address string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading a whole request.
	// Default: 10 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response. Watch sockets are hijacked and
	// are not subject to it.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown, including the final
	// snapshots of live clients.
	// Default: 15 seconds.
	ShutdownTimeout time.Duration

	// WatchWriteWait bounds a single write to a watch socket.
	// Default: 10 seconds.
	WatchWriteWait time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 1024 each.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxBodyBytes caps JSON request bodies.
	// Default: 64KB.
	MaxBodyBytes int64

	// CheckOrigin validates the Origin of watch upgrades.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// PageTitle and PageLang are used by the page endpoint.
	PageTitle string
	PageLang  string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		WatchWriteWait:    10 * time.Second,
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		MaxBodyBytes:      64 * 1024,
		CheckOrigin:       SameOriginCheck,
		PageLang:          "en",
	}
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	d := DefaultServerConfig()
	if c == nil {
		return d
	}
	clone := *c
	if clone.Address == "" {
		clone.Address = d.Address
	}
	if clone.ReadHeaderTimeout == 0 {
		clone.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if clone.ReadTimeout == 0 {
		clone.ReadTimeout = d.ReadTimeout
	}
	if clone.WriteTimeout == 0 {
		clone.WriteTimeout = d.WriteTimeout
	}
	if clone.ShutdownTimeout == 0 {
		clone.ShutdownTimeout = d.ShutdownTimeout
	}
	if clone.WatchWriteWait == 0 {
		clone.WatchWriteWait = d.WatchWriteWait
	}
	if clone.ReadBufferSize == 0 {
		clone.ReadBufferSize = d.ReadBufferSize
	}
	if clone.WriteBufferSize == 0 {
		clone.WriteBufferSize = d.WriteBufferSize
	}
	if clone.MaxBodyBytes == 0 {
		clone.MaxBodyBytes = d.MaxBodyBytes
	}
	if clone.CheckOrigin == nil {
		clone.CheckOrigin = d.CheckOrigin
	}
	if clone.PageLang == "" {
		clone.PageLang = d.PageLang
	}
	return &clone
}

// SameOriginCheck accepts requests whose Origin host matches the request host.
// Requests without an Origin header (curl, server-side clients) are accepted.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}

// AllowedOriginsCheck accepts same-origin requests plus the listed origins.
// A single "*" entry accepts every origin.
func AllowedOriginsCheck(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return SameOriginCheck
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return allowed[strings.ToLower(r.Header.Get("Origin"))]
	}
}
