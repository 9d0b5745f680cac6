package server

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// requesterID returns the authenticated user id, or "" for anonymous requests.
func requesterID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// pageParams reads the 1-based page and limit query parameters.
func pageParams(c *fiber.Ctx) (page, limit int) {
	return service.NormalizePage(c.QueryInt("page", 1), c.QueryInt("limit", 0))
}

// parseBody decodes the request body into out. On failure it writes a 400 response and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// bindContent reads an optional {"content"} body. An unreadable body leaves Content
// empty so the service still reports a missing target before rejecting the content.
func bindContent(c *fiber.Ctx) contentRequest {
	var req contentRequest
	_ = c.BodyParser(&req)
	return req
}

// saveUpload stores the multipart file field in the upload temp dir and returns its
// path. A missing field yields "" so services can report which file is required.
func (s *Server) saveUpload(c *fiber.Ctx, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if header.Size > s.config.MaxUploadBytes() {
		return "", models.NewValidationError("File " + field + " exceeds the upload size limit")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	dst := filepath.Join(s.config.UploadTmpDir, uuid.NewString()+ext)
	if err := c.SaveFile(header, dst); err != nil {
		return "", models.NewInternalError(err)
	}
	return dst, nil
}

// saveUploads saves each field in order. Already saved files are removed on failure.
func (s *Server) saveUploads(c *fiber.Ctx, fields ...string) ([]string, error) {
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		path, err := s.saveUpload(c, field)
		if err != nil {
			removeTemp(c, paths...)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// removeTemp deletes request temp files. Uploaders consume some of them, so missing
// files are expected.
func removeTemp(c *fiber.Ctx, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			middleware.Logger.WarnContext(c.UserContext(), "failed to remove temp upload",
				"path", p, "error", err)
		}
	}
}
