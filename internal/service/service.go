// Package service implements the business rules behind each API resource. Services
// validate input, check existence and ownership, then hand a single write or read
// composition to the repository layer.
package service

import (
	"context"
	"strings"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/storage"
)

const maxContentLen = 10000

// ownedBy is the single ownership predicate used by every mutating operation.
func ownedBy(ownerID, requesterID string) bool {
	return ownerID != "" && ownerID == requesterID
}

func requireID(id, what string) error {
	if !models.IsValidID(id) {
		return models.NewValidationError("Invalid " + what + " id")
	}
	return nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return "", models.NewValidationError("Content too long (max 10000 characters)")
	}
	return content, nil
}

// Pagination defaults shared by paged listings.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// NormalizePage clamps page to at least 1 and limit to (0, MaxPageLimit].
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// discard removes stored objects that are no longer referenced. Failures are logged only.
func discard(ctx context.Context, uploader storage.Uploader, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := uploader.Delete(ctx, url); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete stored object", "url", url, "error", err)
		}
	}
}
