package models

import "github.com/gofiber/fiber/v2"

// APIResponse is the success envelope returned by every endpoint.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Respond writes data inside the success envelope.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < fiber.StatusBadRequest,
	})
}

// Page is a 1-based page of documents.
type Page[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
	PrevPage    *int  `json:"prevPage"`
	NextPage    *int  `json:"nextPage"`
}

// NewPage computes the paging metadata for docs taken from total matches.
func NewPage[T any](docs []T, total int64, page, limit int) Page[T] {
	if docs == nil {
		docs = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	if totalPages == 0 {
		totalPages = 1
	}

	p := Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       limit,
		Page:        page,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	return p
}
