package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/vidtrack/internal/domain/user"
	"github.com/geocoder89/vidtrack/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// userDoc is the persisted shape. last_video_assigned_at stays a pointer
// so "never assigned" round-trips as null.
type userDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	LastVideoAssignedAt *time.Time         `bson:"last_video_assigned_at"`
	CreatedAt           time.Time          `bson:"created_at"`
}

type UsersRepo struct {
	col     *mongo.Collection
	metrics *observability.Prom
	nowFunc func() time.Time
}

type UsersRepoOpt = func(*UsersRepo)

// WithNowFunc overrides the clock. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) UsersRepoOpt {
	return func(r *UsersRepo) {
		r.nowFunc = nowFunc
	}
}

// WithMetrics instruments every logical store op.
func WithMetrics(m *observability.Prom) UsersRepoOpt {
	return func(r *UsersRepo) {
		r.metrics = m
	}
}

func NewUsersRepo(client *mongo.Client, dbName string, opts ...UsersRepoOpt) *UsersRepo {
	r := &UsersRepo{
		col:     client.Database(dbName).Collection(usersCollection),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// EnsureIndexes backs the newest-first listing.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})

	return err
}

func (r *UsersRepo) Create(ctx context.Context, name string) (user.User, error) {
	doc := userDoc{
		ID:                  primitive.NewObjectID(),
		Name:                name,
		LastVideoAssignedAt: nil,
		CreatedAt:           r.nowFunc(),
	}

	err := r.observe("create_user", func() error {
		_, insertErr := r.col.InsertOne(ctx, doc)
		return insertErr
	})

	if err != nil {
		return user.User{}, err
	}

	return toDomain(doc), nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var docs []userDoc

	err := r.observe("list_users", func() error {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

		cursor, findErr := r.col.Find(ctx, bson.M{}, opts)

		if findErr != nil {
			return findErr
		}

		return cursor.All(ctx, &docs)
	})

	if err != nil {
		return nil, err
	}

	out := make([]user.User, 0, len(docs))

	for _, d := range docs {
		out = append(out, toDomain(d))
	}

	return out, nil
}

// SetAssignedAt replaces the last-assigned instant for one user in a
// single document-level update. A nil instant clears it.
func (r *UsersRepo) SetAssignedAt(ctx context.Context, id string, at *time.Time) (user.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		return user.User{}, user.ErrInvalidID
	}

	var updated userDoc

	err = r.observe("set_assigned_at", func() error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		return r.col.FindOneAndUpdate(
			ctx,
			bson.M{"_id": objectID},
			bson.M{"$set": bson.M{"last_video_assigned_at": at}},
			opts,
		).Decode(&updated)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return toDomain(updated), nil
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveStore(op, fn)
}

func toDomain(d userDoc) user.User {
	u := user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		CreatedAt: d.CreatedAt.UTC(),
	}

	if d.LastVideoAssignedAt != nil {
		at := d.LastVideoAssignedAt.UTC()
		u.LastVideoAssignedAt = &at
	}

	return u
}
