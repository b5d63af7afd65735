package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookvault/bookvault-server/internal/domain"
)

// bookFilter translates a listing filter into a query document. The search
// text is quoted so it always matches literally.
func bookFilter(f domain.BookFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["book_category"] = string(f.Category)
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"book_title": pattern},
			bson.M{"book_author": pattern},
		}
	}
	return filter
}

// bookSort maps a sort order to a sort document. _id breaks ties so paging
// through equal keys is stable; the default order is insertion order.
func bookSort(s domain.SortOrder) bson.D {
	switch s {
	case domain.SortTitleAsc:
		return bson.D{{Key: "book_title", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortTitleDesc:
		return bson.D{{Key: "book_title", Value: -1}, {Key: "_id", Value: 1}}
	case domain.SortUpvoteAsc:
		return bson.D{{Key: "upvote", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortUpvoteDesc:
		return bson.D{{Key: "upvote", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}

// categorySummaryPipeline groups books by category. Documents without a
// category are grouped under domain.CategoryUnknown.
func categorySummaryPipeline() bson.A {
	return bson.A{
		bson.M{"$group": bson.M{
			"_id":   bson.M{"$ifNull": bson.A{"$book_category", domain.CategoryUnknown}},
			"count": bson.M{"$sum": 1},
		}},
		bson.M{"$sort": bson.M{"_id": 1}},
	}
}
