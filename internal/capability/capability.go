// Package capability reports which outside resources request handlers may
// reach. Outbound HTTP and the key-value store are granted; the filesystem,
// raw sockets and subprocesses are refused.
package capability

import (
	"errors"
	"fmt"
	"strings"
)

// Type names a capability.
type Type string

const (
	Fetch      Type = "Fetch"
	KVStorage  Type = "KvStorage"
	Filesystem Type = "Filesystem"
	RawSockets Type = "RawSockets"
	Subprocess Type = "Subprocess"
)

// ErrUnknown is returned by ParseType for names it does not recognize.
var ErrUnknown = errors.New("unknown capability. use: fetch, kv, filesystem, sockets, subprocess")

var aliases = map[string]Type{
	"fetch":       Fetch,
	"kv":          KVStorage,
	"kv_storage":  KVStorage,
	"filesystem":  Filesystem,
	"fs":          Filesystem,
	"sockets":     RawSockets,
	"raw_sockets": RawSockets,
	"subprocess":  Subprocess,
	"exec":        Subprocess,
}

// ParseType resolves a query value such as "kv" or "exec" to a Type.
func ParseType(name string) (Type, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	return t, nil
}

// Result is the outcome of probing one capability.
type Result struct {
	Capability Type   `json:"capability"`
	Allowed    bool   `json:"allowed"`
	Message    string `json:"message"`
}

// Entry describes a capability in the static catalog.
type Entry struct {
	Name        string `json:"name"`
	Allowed     bool   `json:"allowed"`
	Description string `json:"description"`
}

// Catalog lists every capability and whether it is granted.
func Catalog() []Entry {
	return []Entry{
		{Name: "fetch", Allowed: true, Description: "Outbound HTTP requests"},
		{Name: "kv_storage", Allowed: true, Description: "Key-value storage shared with the rate limiter"},
		{Name: "filesystem", Allowed: false, Description: "No filesystem access from request handlers"},
		{Name: "raw_sockets", Allowed: false, Description: "No raw socket access, only HTTP"},
		{Name: "subprocess", Allowed: false, Description: "No subprocess or shell access"},
	}
}
