package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Upload describes a file handed over at sign-up.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service stores résumé files in remote object storage.
type Service interface {
	// PutResume stores the upload for the user and returns its location (s3://bucket/key).
	PutResume(ctx context.Context, userID string, upload Upload) (string, error)
	// ResumeURL returns a temporary download link for a stored location.
	ResumeURL(ctx context.Context, location string, expires time.Duration) (string, error)
}

// ParseLocation splits an s3://bucket/key location.
func ParseLocation(location string) (bucket, key string, err error) {
	if !strings.HasPrefix(location, "s3://") {
		return "", "", fmt.Errorf("invalid s3 location")
	}
	rest := strings.TrimPrefix(location, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid s3 location")
	}
	if len(parts) == 1 || strings.TrimPrefix(parts[1], "/") == "" {
		return "", "", fmt.Errorf("s3 key missing")
	}
	return parts[0], strings.TrimPrefix(parts[1], "/"), nil
}

// IsRemote reports whether a résumé reference points into object storage.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

func resumeKey(prefix, userID, token, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		name = "resume"
	}
	parts := []string{}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, "resumes", userID, token+"-"+name)
	return strings.Join(parts, "/")
}
