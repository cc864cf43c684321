package credstore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// SupportedSchemes lists the credential store URI schemes
var SupportedSchemes = []string{"file", "keyring", "memory"}

// URI is a parsed credential store location, e.g.
//
//	file://~/.config/workhub/credentials.yaml
//	keyring://workhub
//	memory://
type URI struct {
	Scheme string
	Path   string // file path for file://, service name for keyring://
	Raw    string
}

// ParseURI parses a credential store URI. A bare path is treated as file://.
// An empty string selects the default file location.
func ParseURI(raw string) (*URI, error) {
	if raw == "" {
		path, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		return &URI{Scheme: "file", Path: path, Raw: raw}, nil
	}

	if !strings.Contains(raw, "://") {
		return &URI{Scheme: "file", Path: expandHome(raw), Raw: raw}, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid credential store URI: %w", err)
	}

	switch parsed.Scheme {
	case "memory":
		return &URI{Scheme: "memory", Raw: raw}, nil

	case "keyring":
		service := parsed.Host + parsed.Path
		service = strings.Trim(service, "/")
		if service == "" {
			service = DefaultKeyringService
		}
		return &URI{Scheme: "keyring", Path: service, Raw: raw}, nil

	case "file":
		// file://./relative, file:///absolute and file://~/home all land here
		path := parsed.Host + parsed.Path
		if path == "" && parsed.Opaque != "" {
			path = parsed.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("credential store URI must have a path")
		}
		return &URI{Scheme: "file", Path: expandHome(path), Raw: raw}, nil

	default:
		return nil, fmt.Errorf("unsupported credential store scheme %q; supported schemes: %s",
			parsed.Scheme, strings.Join(SupportedSchemes, ", "))
	}
}

// Open parses raw and returns the matching Store
func Open(raw string) (Store, error) {
	uri, err := ParseURI(raw)
	if err != nil {
		return nil, err
	}
	return uri.Open(), nil
}

// Open returns the Store backend for the URI
func (u *URI) Open() Store {
	switch u.Scheme {
	case "memory":
		return NewMemoryStore(nil)
	case "keyring":
		return NewKeyringStore(u.Path)
	default:
		return NewFileStore(u.Path)
	}
}

// String returns the original URI string
func (u *URI) String() string {
	return u.Raw
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
