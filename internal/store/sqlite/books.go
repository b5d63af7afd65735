package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/id"
	"github.com/bookvault/bookvault-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, cover_photo, total_pages, author, owner_email, owner_name,
	category, reading_status, overview, upvotes`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b        domain.Book
		category string
		status   string
	)
	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.CoverPhoto,
		&b.TotalPages,
		&b.Author,
		&b.OwnerEmail,
		&b.OwnerName,
		&category,
		&status,
		&b.Overview,
		&b.Upvotes,
	)
	if err != nil {
		return nil, err
	}
	b.Category = domain.Category(category)
	b.ReadingStatus = domain.ReadingStatus(status)
	return &b, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a new book and assigns its ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	bookID, err := id.Generate()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, title_fold, cover_photo, total_pages, author, author_fold,
			owner_email, owner_name, category, reading_status, overview, upvotes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bookID,
		book.Title,
		store.Fold(book.Title),
		book.CoverPhoto,
		book.TotalPages,
		book.Author,
		store.Fold(book.Author),
		book.OwnerEmail,
		book.OwnerName,
		string(book.Category),
		string(book.ReadingStatus),
		book.Overview,
		book.Upvotes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	book.ID = bookID
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, bookID)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// ListBooks returns books matching filter. Search is a literal,
// case-folded substring match over title and author.
func (s *Store) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Search != "" {
		needle := store.Fold(filter.Search)
		where = append(where, "(instr(title_fold, ?) > 0 OR instr(author_fold, ?) > 0)")
		args = append(args, needle, needle)
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + orderBy(filter.Sort)

	books, err := s.queryBooks(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func orderBy(sort domain.SortOrder) string {
	switch sort {
	case domain.SortTitleAsc:
		return "title ASC, rowid ASC"
	case domain.SortTitleDesc:
		return "title DESC, rowid ASC"
	case domain.SortUpvoteAsc:
		return "upvotes ASC, rowid ASC"
	case domain.SortUpvoteDesc:
		return "upvotes DESC, rowid ASC"
	default:
		return "rowid ASC"
	}
}

// ListBooksByOwner returns every book whose owner email equals email.
func (s *Store) ListBooksByOwner(ctx context.Context, email string) ([]*domain.Book, error) {
	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE owner_email = ? ORDER BY rowid`, email)
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	return books, nil
}

// TopBooks returns up to limit books by upvotes, highest first.
func (s *Store) TopBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY upvotes DESC, rowid ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top books: %w", err)
	}
	return books, nil
}

// UpdateBookContent replaces the owner-editable fields of a book.
func (s *Store) UpdateBookContent(ctx context.Context, bookID string, c domain.BookContent) (store.UpdateResult, error) {
	res, err := s.updateOne(ctx, "books", bookID, `
		UPDATE books SET
			title = ?, title_fold = ?, cover_photo = ?, total_pages = ?,
			author = ?, author_fold = ?, category = ?, reading_status = ?, overview = ?
		WHERE id = ? AND NOT (
			title = ? AND cover_photo = ? AND total_pages = ? AND author = ?
			AND category = ? AND reading_status = ? AND overview = ?
		)`,
		c.Title, store.Fold(c.Title), c.CoverPhoto, c.TotalPages,
		c.Author, store.Fold(c.Author), string(c.Category), string(c.ReadingStatus), c.Overview,
		bookID,
		c.Title, c.CoverPhoto, c.TotalPages, c.Author,
		string(c.Category), string(c.ReadingStatus), c.Overview,
	)
	if err != nil {
		return res, fmt.Errorf("update book: %w", err)
	}
	return res, nil
}

// SetReadingStatus sets the reading status of a book.
func (s *Store) SetReadingStatus(ctx context.Context, bookID string, status domain.ReadingStatus) (store.UpdateResult, error) {
	res, err := s.updateOne(ctx, "books", bookID,
		`UPDATE books SET reading_status = ? WHERE id = ? AND reading_status <> ?`,
		string(status), bookID, string(status))
	if err != nil {
		return res, fmt.Errorf("set reading status: %w", err)
	}
	return res, nil
}

// SetUpvotes overwrites the upvote count of a book.
func (s *Store) SetUpvotes(ctx context.Context, bookID string, upvotes int64) (store.UpdateResult, error) {
	res, err := s.updateOne(ctx, "books", bookID,
		`UPDATE books SET upvotes = ? WHERE id = ? AND upvotes <> ?`,
		upvotes, bookID, upvotes)
	if err != nil {
		return res, fmt.Errorf("set upvotes: %w", err)
	}
	return res, nil
}

// IncrementUpvotes adds one to the upvote count in a single statement.
func (s *Store) IncrementUpvotes(ctx context.Context, bookID string) (store.UpdateResult, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE books SET upvotes = upvotes + 1 WHERE id = ?`, bookID)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("increment upvotes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpdateResult{}, err
	}
	return store.UpdateResult{Matched: n, Modified: n}, nil
}

// DeleteBook removes a book and returns the number of rows deleted.
// Reviews of the book are left in place.
func (s *Store) DeleteBook(ctx context.Context, bookID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return res.RowsAffected()
}

// CategorySummary counts books per category.
func (s *Store) CategorySummary(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM books GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer rows.Close()

	var raw []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		raw = append(raw, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.MergeCategoryCounts(raw), nil
}
