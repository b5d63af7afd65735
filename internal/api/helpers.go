package api

import (
	"github.com/bookvault/bookvault-server/internal/store"
)

// The mutation responses keep the shape of the database driver's result
// documents because the web client reads these fields directly.

// InsertResult reports a created document.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged" doc:"Always true on success"`
	InsertedID   string `json:"insertedId" doc:"ID of the new document"`
}

// UpdateResult reports how many documents matched and changed.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged" doc:"Always true on success"`
	MatchedCount  int64 `json:"matchedCount" doc:"Documents matched by id"`
	ModifiedCount int64 `json:"modifiedCount" doc:"Documents whose fields changed"`
}

// DeleteResult reports how many documents were removed.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged" doc:"Always true on success"`
	DeletedCount int64 `json:"deletedCount" doc:"Documents removed"`
}

// InsertOutput wraps an insert result for Huma.
type InsertOutput struct {
	Body InsertResult
}

// UpdateOutput wraps an update result for Huma.
type UpdateOutput struct {
	Body UpdateResult
}

// DeleteOutput wraps a delete result for Huma.
type DeleteOutput struct {
	Body DeleteResult
}

func inserted(id string) *InsertOutput {
	return &InsertOutput{Body: InsertResult{Acknowledged: true, InsertedID: id}}
}

func updated(res store.UpdateResult) *UpdateOutput {
	return &UpdateOutput{Body: UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.Matched,
		ModifiedCount: res.Modified,
	}}
}

func deleted(n int64) *DeleteOutput {
	return &DeleteOutput{Body: DeleteResult{Acknowledged: true, DeletedCount: n}}
}
