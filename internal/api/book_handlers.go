package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/bookshelf",
		Summary:     "List books",
		Description: "Returns the catalogue filtered by category and search text, in the requested order",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "topLikedBooks",
		Method:      http.MethodGet,
		Path:        "/top-liked-books",
		Summary:     "Top liked books",
		Description: "Returns the six most upvoted books",
		Tags:        []string{"Books"},
	}, s.handleTopBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/book-details/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyBooks",
		Method:      http.MethodGet,
		Path:        "/my-books/{email}",
		Summary:     "List my books",
		Description: "Returns the books owned by the signed-in user",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleListMyBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyBooksByQuery",
		Method:      http.MethodGet,
		Path:        "/my-books",
		Summary:     "List my books (query)",
		Description: "Same as /my-books/{email} with the email in the query string",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleListMyBooksByQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "categoriesSummary",
		Method:      http.MethodGet,
		Path:        "/categories-summary",
		Summary:     "Category summary",
		Description: "Counts books per category",
		Tags:        []string{"Books"},
	}, s.handleCategorySummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/add-book",
		Summary:     "Add book",
		Description: "Adds a book owned by the signed-in user",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/update-book/{id}",
		Summary:     "Update book",
		Description: "Replaces the editable fields of a book you own",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReadingStatus",
		Method:      http.MethodPatch,
		Path:        "/update-status/{id}",
		Summary:     "Update reading status",
		Description: "Sets the reading status of a book you own",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleUpdateStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "upvoteBook",
		Method:      http.MethodPatch,
		Path:        "/upvote/{id}",
		Summary:     "Upvote book",
		Description: "Sets the upvote count when a value is given, otherwise adds one. Owners cannot upvote their own books.",
		Tags:        []string{"Books"},
		Security:    optionalBearerSecurity,
		Middlewares: huma.Middlewares{s.limitUpvotes},
	}, s.handleUpvote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/delete-book/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book you own. Its reviews are kept.",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse is a book as the client sees it.
type BookResponse struct {
	ID            string `json:"_id" doc:"Book ID"`
	Title         string `json:"book_title" doc:"Title"`
	CoverPhoto    string `json:"cover_photo" doc:"Cover image URL"`
	TotalPages    int    `json:"total_page" doc:"Number of pages"`
	Author        string `json:"book_author" doc:"Author"`
	OwnerEmail    string `json:"user_email" doc:"Owner's email"`
	OwnerName     string `json:"user_name" doc:"Owner's display name"`
	Category      string `json:"book_category" doc:"Category"`
	ReadingStatus string `json:"reading_status" doc:"Owner's reading status"`
	Overview      string `json:"book_overview" doc:"Short description"`
	Upvotes       int64  `json:"upvote" doc:"Upvote count"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		CoverPhoto:    b.CoverPhoto,
		TotalPages:    b.TotalPages,
		Author:        b.Author,
		OwnerEmail:    b.OwnerEmail,
		OwnerName:     b.OwnerName,
		Category:      string(b.Category),
		ReadingStatus: string(b.ReadingStatus),
		Overview:      b.Overview,
		Upvotes:       b.Upvotes,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = toBookResponse(b)
	}
	return resp
}

// ListBooksInput contains listing parameters.
type ListBooksInput struct {
	Category string `query:"category" enum:"All,Fiction,Non-Fiction,Sci-Fi,Mystery,Fantasy,Biography" doc:"Category filter; All or empty for every category"`
	Search   string `query:"search" maxLength:"200" doc:"Case-insensitive text matched literally against title and author"`
	Sort     string `query:"sort" enum:"default,title-asc,title-desc,upvote-asc,upvote-desc" doc:"Result order"`
}

// BookListOutput wraps a list of books for Huma.
type BookListOutput struct {
	Body []BookResponse
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// MyBooksInput takes the owner email from the path.
type MyBooksInput struct {
	Email string `path:"email" doc:"Owner email; must match the signed-in user"`
}

// MyBooksQueryInput takes the owner email from the query string.
type MyBooksQueryInput struct {
	Email string `query:"email" required:"true" doc:"Owner email; must match the signed-in user"`
}

// CategoryCountResponse is one row of the category summary.
type CategoryCountResponse struct {
	Category string `json:"category" doc:"Category name, or Unknown for legacy books"`
	Count    int64  `json:"count" doc:"Number of books"`
}

// CategorySummaryOutput wraps the category summary for Huma.
type CategorySummaryOutput struct {
	Body []CategoryCountResponse
}

// BookRequest is the request body for creating or replacing a book.
// Owner and upvote fields are accepted for client compatibility; the server
// stamps the owner from the token and never takes the upvote count from here.
type BookRequest struct {
	_             struct{} `json:"-" additionalProperties:"true"`
	Title         string   `json:"book_title" minLength:"1" maxLength:"300" doc:"Title"`
	CoverPhoto    string   `json:"cover_photo,omitempty" maxLength:"2048" doc:"Cover image URL"`
	TotalPages    int      `json:"total_page" minimum:"0" maximum:"100000" doc:"Number of pages"`
	Author        string   `json:"book_author" minLength:"1" maxLength:"200" doc:"Author"`
	Category      string   `json:"book_category" enum:"Fiction,Non-Fiction,Sci-Fi,Mystery,Fantasy,Biography" doc:"Category"`
	ReadingStatus string   `json:"reading_status" enum:"Read,Reading,Want-to-Read" doc:"Reading status"`
	Overview      string   `json:"book_overview,omitempty" maxLength:"10000" doc:"Short description"`
	OwnerEmail    string   `json:"user_email,omitempty" doc:"Must match the signed-in user when present"`
	OwnerName     string   `json:"user_name,omitempty" doc:"Display name; defaults to the token's name"`
	Upvotes       *int64   `json:"upvote,omitempty" doc:"Ignored"`
}

func (r BookRequest) content() domain.BookContent {
	return domain.BookContent{
		Title:         r.Title,
		CoverPhoto:    r.CoverPhoto,
		TotalPages:    r.TotalPages,
		Author:        r.Author,
		Category:      domain.Category(r.Category),
		ReadingStatus: domain.ReadingStatus(r.ReadingStatus),
		Overview:      r.Overview,
	}
}

// AddBookInput wraps the create book request for Huma.
type AddBookInput struct {
	Body BookRequest
}

// UpdateBookInput wraps the replace book request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body BookRequest
}

// StatusRequest is the request body for changing the reading status.
type StatusRequest struct {
	_             struct{} `json:"-" additionalProperties:"true"`
	ReadingStatus string   `json:"reading_status" enum:"Read,Reading,Want-to-Read" doc:"Reading status"`
}

// UpdateStatusInput wraps the status request for Huma.
type UpdateStatusInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body StatusRequest
}

// UpvoteRequest is the optional body of an upvote.
type UpvoteRequest struct {
	_      struct{} `json:"-" additionalProperties:"true"`
	Upvote *int64   `json:"upvote,omitempty" minimum:"0" doc:"New count; omit to add one"`
}

// UpvoteInput wraps the upvote request for Huma. The body may be omitted.
type UpvoteInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body *UpvoteRequest
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	filter := domain.NewBookFilter(input.Category, input.Search, domain.SortOrder(input.Sort))

	books, err := s.services.Book.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleTopBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	books, err := s.services.Book.TopBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleListMyBooks(ctx context.Context, input *MyBooksInput) (*BookListOutput, error) {
	return s.listOwnerBooks(ctx, input.Email)
}

func (s *Server) handleListMyBooksByQuery(ctx context.Context, input *MyBooksQueryInput) (*BookListOutput, error) {
	return s.listOwnerBooks(ctx, input.Email)
}

func (s *Server) listOwnerBooks(ctx context.Context, email string) (*BookListOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListOwnerBooks(ctx, identity, email)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleCategorySummary(ctx context.Context, _ *struct{}) (*CategorySummaryOutput, error) {
	summary, err := s.services.Book.CategorySummary(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryCountResponse, len(summary))
	for i, c := range summary {
		resp[i] = CategoryCountResponse{Category: string(c.Category), Count: c.Count}
	}
	return &CategorySummaryOutput{Body: resp}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*InsertOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, identity, service.NewBook{
		Content:    input.Body.content(),
		OwnerEmail: input.Body.OwnerEmail,
		OwnerName:  input.Body.OwnerName,
	})
	if err != nil {
		return nil, err
	}
	return inserted(book.ID), nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*UpdateOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Book.UpdateBook(ctx, identity, input.ID, input.Body.content())
	if err != nil {
		return nil, err
	}
	return updated(res), nil
}

func (s *Server) handleUpdateStatus(ctx context.Context, input *UpdateStatusInput) (*UpdateOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Book.UpdateStatus(ctx, identity, input.ID, domain.ReadingStatus(input.Body.ReadingStatus))
	if err != nil {
		return nil, err
	}
	return updated(res), nil
}

func (s *Server) handleUpvote(ctx context.Context, input *UpvoteInput) (*UpdateOutput, error) {
	var set *int64
	if input.Body != nil {
		set = input.Body.Upvote
	}

	res, err := s.services.Book.Upvote(ctx, IdentityFrom(ctx), input.ID, set)
	if err != nil {
		return nil, err
	}
	return updated(res), nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*DeleteOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Book.DeleteBook(ctx, identity, input.ID)
	if err != nil {
		return nil, err
	}
	return deleted(n), nil
}
