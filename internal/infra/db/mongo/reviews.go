package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "homestay/internal/domain/properties"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(ctx context.Context, db *mongo.Database) (*ReviewRepository, error) {
	col := db.Collection("agg_review")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("one_review_per_author"),
		},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, err
	}
	return &ReviewRepository{col: col}, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	_, err := r.col.InsertOne(ctx, reviewDocument{
		ID:         string(review.ID),
		PropertyID: string(review.PropertyID),
		UserID:     string(review.UserID),
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrAlreadyReviewed
	}
	return conflictOr(err)
}

func (r *ReviewRepository) Exists(ctx context.Context, propertyID domainproperties.ID, userID domainuser.ID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"property_id": string(propertyID), "user_id": string(userID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, propertyID domainproperties.ID, limit, offset int) ([]*domainreviews.Review, int, error) {
	filter := bson.M{"property_id": string(propertyID)}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(max(offset, 0)))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, int(total), nil
}

func (r *ReviewRepository) Ratings(ctx context.Context, propertyID domainproperties.ID) ([]int, error) {
	cur, err := r.col.Find(ctx, bson.M{"property_id": string(propertyID)}, options.Find().SetProjection(bson.M{"rating": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		Rating int `bson:"rating"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Rating)
	}
	return out, nil
}

type reviewDocument struct {
	ID         string    `bson:"_id"`
	PropertyID string    `bson:"property_id"`
	UserID     string    `bson:"user_id"`
	Rating     int       `bson:"rating"`
	Comment    string    `bson:"comment"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ID(d.ID),
		PropertyID: domainproperties.ID(d.PropertyID),
		UserID:     domainuser.ID(d.UserID),
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}
