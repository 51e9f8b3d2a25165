package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Schemes understood by Parse and produced by URI.String.
const (
	SchemeMongoDB = "mongodb"
	SchemeSRV     = "mongodb+srv"
)

var (
	// ErrInvalidScheme is returned when the URI does not start with
	// mongodb:// or mongodb+srv://.
	ErrInvalidScheme = errors.New("invalid scheme: expected mongodb:// or mongodb+srv://")

	// ErrMissingHost is returned when the URI contains no host part.
	ErrMissingHost = errors.New("uri contains no host")

	// ErrInvalidPort is returned when a host port is not a valid number.
	ErrInvalidPort = errors.New("invalid port in uri")
)

// HostPort is a single seed-list entry. Port is zero when the URI does not
// specify one (always the case for mongodb+srv).
type HostPort struct {
	Host string
	Port int
}

func (hp HostPort) String() string {
	if hp.Port > 0 {
		return fmt.Sprintf("%s:%d", hp.Host, hp.Port)
	}
	return hp.Host
}

// URI is a decomposed MongoDB connection string. It round-trips through
// String, which makes it usable both for picking a connection string apart
// and for assembling one from individual parameters.
type URI struct {
	Scheme   string
	Username string
	Password string
	Hosts    []HostPort
	Database string
	Params   url.Values
}

// Host returns the first seed-list host, or an empty HostPort when the URI
// has no hosts.
func (u URI) Host() HostPort {
	if len(u.Hosts) == 0 {
		return HostPort{}
	}
	return u.Hosts[0]
}

// String assembles the URI back into connection-string form.
func (u URI) String() string {
	var sb strings.Builder

	scheme := u.Scheme
	if scheme == "" {
		scheme = SchemeMongoDB
	}
	sb.WriteString(scheme)
	sb.WriteString("://")

	if u.Username != "" {
		sb.WriteString(url.UserPassword(u.Username, u.Password).String())
		sb.WriteByte('@')
	}

	hosts := make([]string, 0, len(u.Hosts))
	for _, hp := range u.Hosts {
		hosts = append(hosts, hp.String())
	}
	sb.WriteString(strings.Join(hosts, ","))

	if u.Database != "" {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(u.Database))
	}

	if len(u.Params) > 0 {
		if u.Database == "" {
			sb.WriteByte('/')
		}
		sb.WriteByte('?')
		sb.WriteString(u.Params.Encode())
	}

	return sb.String()
}

// IsURI reports whether s looks like a MongoDB connection string.
func IsURI(s string) bool {
	return strings.HasPrefix(s, SchemeMongoDB+"://") || strings.HasPrefix(s, SchemeSRV+"://")
}

// Parse decomposes a MongoDB connection string.
//
// The format follows the driver's:
//
//	mongodb://[user:pass@]host1[:port1][,host2[:port2],...]/[database][?options]
//
// Multi-host seed lists (replica sets) and mongodb+srv are supported, which
// is why net/url alone is not enough: a comma-separated authority is not a
// valid generic URL.
func Parse(s string) (URI, error) {
	var u URI

	switch {
	case strings.HasPrefix(s, SchemeMongoDB+"://"):
		u.Scheme = SchemeMongoDB
		s = strings.TrimPrefix(s, SchemeMongoDB+"://")
	case strings.HasPrefix(s, SchemeSRV+"://"):
		u.Scheme = SchemeSRV
		s = strings.TrimPrefix(s, SchemeSRV+"://")
	default:
		return URI{}, ErrInvalidScheme
	}

	// Split off query options first.
	if i := strings.IndexByte(s, '?'); i >= 0 {
		params, err := url.ParseQuery(s[i+1:])
		if err != nil {
			return URI{}, fmt.Errorf("parsing uri options: %w", err)
		}
		u.Params = params
		s = s[:i]
	}

	// Authority / path split.
	authority := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		authority = s[:i]
		db, err := url.PathUnescape(s[i+1:])
		if err != nil {
			return URI{}, fmt.Errorf("parsing database name: %w", err)
		}
		u.Database = db
	}

	// Credentials are everything before the last '@' so that passwords
	// containing '@' keep working when percent-encoded or not.
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		userinfo := authority[:i]
		authority = authority[i+1:]

		user, pass, _ := strings.Cut(userinfo, ":")
		var err error
		if u.Username, err = url.QueryUnescape(user); err != nil {
			return URI{}, fmt.Errorf("parsing username: %w", err)
		}
		if u.Password, err = url.QueryUnescape(pass); err != nil {
			return URI{}, fmt.Errorf("parsing password: %w", err)
		}
	}

	if authority == "" {
		return URI{}, ErrMissingHost
	}

	for _, part := range strings.Split(authority, ",") {
		hp, err := parseHostPort(part)
		if err != nil {
			return URI{}, err
		}
		u.Hosts = append(u.Hosts, hp)
	}

	return u, nil
}

func parseHostPort(s string) (HostPort, error) {
	host, portStr, ok := splitHostPort(s)
	if host == "" {
		return HostPort{}, ErrMissingHost
	}
	if !ok {
		return HostPort{Host: host}, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return HostPort{}, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}

	return HostPort{Host: host, Port: port}, nil
}

// splitHostPort splits on the last colon so IPv6 literals in brackets survive.
func splitHostPort(s string) (host, port string, ok bool) {
	if strings.HasPrefix(s, "[") {
		if i := strings.IndexByte(s, ']'); i >= 0 {
			host = s[:i+1]
			rest := s[i+1:]
			if strings.HasPrefix(rest, ":") {
				return host, rest[1:], true
			}
			return host, "", false
		}
	}

	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}
