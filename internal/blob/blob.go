// Package blob publishes run artifacts to a blob store selected by URL.
//
//	s3://bucket/prefix    S3 or MinIO (see s3.ConfigFromEnv)
//	file:///dir/prefix    local filesystem rooted at /dir/prefix
//	mem://prefix          process memory (tests)
package blob

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"dotprep/internal/blob/core"
	"dotprep/internal/blob/fs"
	"dotprep/internal/blob/memory"
	"dotprep/internal/blob/s3"
)

type (
	Store      = core.Store
	Info       = core.Info
	PutOptions = core.PutOptions
)

var (
	ErrExists   = core.ErrExists
	ErrNotFound = core.ErrNotFound
)

// Open parses a destination URL and returns the store and key prefix.
func Open(ctx context.Context, rawURL string) (Store, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("publish url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return nil, "", fmt.Errorf("publish url %q: missing bucket", rawURL)
		}
		st, err := s3.New(ctx, s3.ConfigFromEnv(u.Host))
		if err != nil {
			return nil, "", err
		}
		return st, strings.Trim(u.Path, "/"), nil
	case "file":
		root := filepath.FromSlash(u.Path)
		if u.Host != "" {
			root = filepath.Join(u.Host, root)
		}
		if root == "" {
			return nil, "", fmt.Errorf("publish url %q: missing directory", rawURL)
		}
		st, err := fs.New(root)
		if err != nil {
			return nil, "", err
		}
		return st, "", nil
	case "mem":
		return memory.New(), strings.Trim(u.Host+u.Path, "/"), nil
	default:
		return nil, "", fmt.Errorf("publish url %q: unsupported scheme %q", rawURL, u.Scheme)
	}
}

// Publish uploads dir/name for each name under prefix/name. Existing keys
// are detected with a listing before anything is written. Uploads stop at
// the first failure; blobs already written are left in place.
func Publish(ctx context.Context, st Store, prefix, dir string, names []string, metadata map[string]string) ([]Info, error) {
	existing, err := st.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	taken := make(map[string]bool, len(existing))
	for _, in := range existing {
		taken[in.Key] = true
	}
	for _, name := range names {
		if key := path.Join(prefix, name); taken[key] {
			return nil, fmt.Errorf("publish %s: %w: %s", name, ErrExists, key)
		}
	}

	out := make([]Info, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		info, err := publishOne(ctx, st, path.Join(prefix, name), filepath.Join(dir, name), metadata)
		if err != nil {
			return out, fmt.Errorf("publish %s: %w", name, err)
		}
		out = append(out, info)
	}
	return out, nil
}

func publishOne(ctx context.Context, st Store, key, file string, metadata map[string]string) (Info, error) {
	fh, err := os.Open(file)
	if err != nil {
		return Info{}, err
	}
	defer fh.Close()
	return st.Put(ctx, key, fh, PutOptions{ContentType: ContentType(file), Metadata: metadata})
}

// ContentType guesses a MIME type from an artifact name.
func ContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".coords"), strings.HasSuffix(name, ".annotations"):
		return "text/csv"
	default:
		return "text/plain"
	}
}
