package api

import (
	"github.com/bookvault/bookvault-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Book   *service.BookService
	Review *service.ReviewService
}
