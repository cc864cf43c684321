package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedSchemes lists all currently supported storage URI schemes
var SupportedSchemes = []string{"memory", "file", "sqlite", "postgres", "postgresql"}

// StorageURI represents a parsed storage backend URI
type StorageURI struct {
	Scheme string // Storage backend type (e.g., "file", "sqlite")
	Host   string // Host for network backends
	Path   string // File path for file and sqlite, database name for postgres
	Raw    string // Original URI string
}

// NormalizeStorageURI ensures the URI has a scheme, prepending "file://" if missing
func NormalizeStorageURI(uri string) string {
	if uri == "" {
		return uri
	}
	if !strings.Contains(uri, "://") {
		return "file://" + uri
	}
	return uri
}

// ParseStorageURI parses a storage URI string into its components
func ParseStorageURI(uri string) (*StorageURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("storage URI cannot be empty")
	}

	normalized := NormalizeStorageURI(uri)

	parsed, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid URI format: %w", err)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("URI must have a scheme (e.g., file://)")
	}

	if err := validateScheme(parsed.Scheme); err != nil {
		return nil, err
	}

	switch parsed.Scheme {
	case "memory":
		return &StorageURI{Scheme: parsed.Scheme, Raw: uri}, nil

	case "postgres", "postgresql":
		if parsed.Host == "" {
			return nil, fmt.Errorf("postgres URI must include a host: postgres://<user>:<password>@<host>/<database>")
		}
		return &StorageURI{
			Scheme: parsed.Scheme,
			Host:   parsed.Host,
			Path:   strings.TrimPrefix(parsed.Path, "/"),
			Raw:    uri,
		}, nil
	}

	path := localPath(parsed)
	if path == "" {
		return nil, fmt.Errorf("storage URI must have a path")
	}

	return &StorageURI{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   path,
		Raw:    uri,
	}, nil
}

// localPath extracts a filesystem path from file:// and sqlite:// URIs
func localPath(parsed *url.URL) string {
	path := parsed.Path
	// Relative paths may land in Opaque
	if path == "" && parsed.Opaque != "" {
		path = parsed.Opaque
	}
	// file://./path keeps the leading ./
	if parsed.Host == "." && strings.HasPrefix(path, "/") {
		return "./" + strings.TrimPrefix(path, "/")
	}
	// Windows drive letter: file://C:/path
	if len(parsed.Host) == 2 && parsed.Host[1] == ':' && path != "" {
		if h := strings.ToUpper(parsed.Host[:1]); h >= "A" && h <= "Z" {
			return parsed.Host + path
		}
	}
	return path
}

// validateScheme checks if the scheme is supported
func validateScheme(scheme string) error {
	for _, s := range SupportedSchemes {
		if scheme == s {
			return nil
		}
	}

	return fmt.Errorf("unsupported storage scheme %q; supported schemes: %s",
		scheme, strings.Join(SupportedSchemes, ", "))
}

// IsSQLScheme returns true for backends served by SQLStorage
func (u *StorageURI) IsSQLScheme() bool {
	switch u.Scheme {
	case "sqlite", "postgres", "postgresql":
		return true
	}
	return false
}

// Redacted returns the URI with any password masked, for logging
func (u *StorageURI) Redacted() string {
	parsed, err := url.Parse(NormalizeStorageURI(u.Raw))
	if err != nil {
		return u.Scheme + "://"
	}
	return parsed.Redacted()
}

// String returns the original URI string
func (u *StorageURI) String() string {
	return u.Raw
}
