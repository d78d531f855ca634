package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/exercisetracker/internal/domain"
)

type userDocument struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
}

type activityDocument struct {
	Description string `bson:"description"`
	Duration    string `bson:"duration"`
	Date        string `bson:"date"`
}

type logDocument struct {
	ID         string             `bson:"_id"`
	UserID     string             `bson:"user_id,omitempty"`
	Activities []activityDocument `bson:"activities"`
}

// Repository implements the domain repositories over the users and activities collections.
type Repository struct {
	users      *mongo.Collection
	activities *mongo.Collection
}

// NewRepository constructs a Repository on db.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:      db.Collection(usersCollection),
		activities: db.Collection(activitiesCollection),
	}
}

// SaveUser upserts the user document keyed by its id.
func (r *Repository) SaveUser(ctx context.Context, user domain.User) error {
	doc := userDocument{ID: user.ID, Username: user.Username}
	_, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}

// FindUser implements domain.UserRepository.
func (r *Repository) FindUser(ctx context.Context, id string) (*domain.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &domain.User{ID: doc.ID, Username: doc.Username}, nil
}

// FindLog implements domain.ActivityLogRepository.
func (r *Repository) FindLog(ctx context.Context, userID string) (*domain.ActivityLog, error) {
	return r.findLog(ctx, userID, options.FindOne())
}

// AppendActivity adds the activity with $addToSet, so equal entries collapse.
func (r *Repository) AppendActivity(ctx context.Context, userID string, activity domain.Activity) error {
	update := bson.M{"$addToSet": bson.M{"activities": toActivityDocument(activity)}}
	if _, err := r.activities.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return fmt.Errorf("append activity for %s: %w", userID, err)
	}
	return nil
}

// CreateLog upserts the log keyed by userID. Concurrent creators converge on one document.
func (r *Repository) CreateLog(ctx context.Context, userID string, activity domain.Activity) error {
	update := bson.M{
		"$setOnInsert": bson.M{"user_id": userID},
		"$addToSet":    bson.M{"activities": toActivityDocument(activity)},
	}
	_, err := r.activities.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("create activity log for %s: %w", userID, err)
	}
	return nil
}

// FilterLog runs the match/filter/slice aggregation.
func (r *Repository) FilterLog(ctx context.Context, userID, from, to string, limit int) ([]domain.ActivityLog, error) {
	cursor, err := r.activities.Aggregate(ctx, filterPipeline(userID, from, to, limit))
	if err != nil {
		return nil, fmt.Errorf("aggregate activity log for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []logDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity log for %s: %w", userID, err)
	}

	out := make([]domain.ActivityLog, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainLog(doc))
	}
	return out, nil
}

// SliceLog looks the log up directly, projecting the first limit activities.
func (r *Repository) SliceLog(ctx context.Context, userID string, limit int) (*domain.ActivityLog, error) {
	opts := options.FindOne()
	if limit > 0 {
		opts.SetProjection(bson.M{"activities": bson.M{"$slice": limit}})
	}
	return r.findLog(ctx, userID, opts)
}

func (r *Repository) findLog(ctx context.Context, userID string, opts *options.FindOneOptions) (*domain.ActivityLog, error) {
	var doc logDocument
	if err := r.activities.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find activity log for %s: %w", userID, err)
	}
	record := toDomainLog(doc)
	return &record, nil
}

// filterPipeline matches the log by id and keeps activities dated within [from, to].
// Bounds are wrapped in $literal so values starting with '$' are never read as field paths.
func filterPipeline(userID, from, to string, limit int) bson.A {
	var activities any = bson.M{
		"$filter": bson.M{
			"input": "$activities",
			"as":    "list",
			"cond": bson.M{
				"$and": bson.A{
					bson.M{"$gte": bson.A{"$$list.date", bson.M{"$literal": from}}},
					bson.M{"$lte": bson.A{"$$list.date", bson.M{"$literal": to}}},
				},
			},
		},
	}
	if limit > 0 {
		activities = bson.M{"$slice": bson.A{activities, limit}}
	}

	return bson.A{
		bson.M{"$match": bson.M{"_id": userID}},
		bson.M{"$project": bson.M{"user_id": 1, "activities": activities}},
	}
}

func toActivityDocument(activity domain.Activity) activityDocument {
	return activityDocument{
		Description: activity.Description,
		Duration:    activity.Duration,
		Date:        activity.Date,
	}
}

func toDomainLog(doc logDocument) domain.ActivityLog {
	record := domain.ActivityLog{
		ID:         doc.ID,
		UserID:     doc.UserID,
		Activities: make([]domain.Activity, 0, len(doc.Activities)),
	}
	if record.UserID == "" {
		record.UserID = doc.ID
	}
	for _, a := range doc.Activities {
		record.Activities = append(record.Activities, domain.Activity{
			Description: a.Description,
			Duration:    a.Duration,
			Date:        a.Date,
		})
	}
	return record
}
