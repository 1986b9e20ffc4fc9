package sfs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// ArchiveExt is appended to the logical name when a directory is uploaded.
	ArchiveExt = ".zip"
	// UploadField is the multipart field carrying the archive.
	UploadField = "uploadFile"
)

// NormalizeRemoteName strips exactly one trailing ".zip" from name.
// The comparison is case-sensitive: "a.ZIP" is left untouched, and so is
// ".zip" itself since it has no stem.
func NormalizeRemoteName(name string) string {
	if name == ArchiveExt {
		return name
	}
	return strings.TrimSuffix(name, ArchiveExt)
}

// DefaultRemoteName builds the name used when none is given:
// "<org>_<context>_<unix seconds>".
func DefaultRemoteName(org, context string, now time.Time) string {
	return org + "_" + context + "_" + strconv.FormatInt(now.Unix(), 10)
}

// ResolveOrigin reduces a service URL to "<scheme>://<host[:port]>",
// discarding any path, query or fragment.
func ResolveOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse service url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// FilesPath is the collection path of a context. The trailing slash form is
// used by uploads.
func FilesPath(org, context string) string {
	return "/files/" + url.PathEscape(org) + "/" + url.PathEscape(context)
}

// FilePath addresses a single file within a context.
func FilePath(t Target) string {
	return FilesPath(t.Org, t.Context) + "/" + url.PathEscape(t.Name)
}

// ContextsPath lists every context visible to the caller.
const ContextsPath = "/contexts"
