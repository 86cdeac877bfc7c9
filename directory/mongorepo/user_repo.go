package mongorepo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loophq/go-chat-server/directory"
	internalerrors "github.com/loophq/go-chat-server/internal/errors"
)

const operationTimeout = 5 * time.Second

var _ directory.UserRepo = (*UserRepo)(nil)

// UserRepo is a Mongo-backed directory of users. Lookups run with a short
// operation timeout; the coordinator's fast paths never reach this repo.
type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(ctx context.Context, db *mongo.Database) (*UserRepo, error) {
	collection := db.Collection("users")

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "display_name", Value: 1}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "[NewUserRepo] create indexes")
	}
	return &UserRepo{collection: collection}, nil
}

func (ur *UserRepo) Upsert(user *directory.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": user}
	_, err := ur.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return errors.Wrap(err, "[UserRepo.Upsert] UpdateOne")
}

func (ur *UserRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	result, err := ur.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Delete] DeleteOne")
	}
	if result.DeletedCount == 0 {
		return internalerrors.ErrNotFound
	}
	return nil
}

func (ur *UserRepo) GetByID(id string) (*directory.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var user directory.User
	err := ur.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, internalerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.GetByID] FindOne")
	}
	return &user, nil
}

func (ur *UserRepo) GetByEmail(email string) (*directory.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var user directory.User
	err := ur.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, internalerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.GetByEmail] FindOne")
	}
	return &user, nil
}

func (ur *UserRepo) ListByTenant(tenantID string, offset, limit int) ([]*directory.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "display_name", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := ur.collection.Find(ctx, bson.M{"tenant_id": tenantID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.ListByTenant] Find")
	}
	defer cursor.Close(ctx)

	users := make([]*directory.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "[UserRepo.ListByTenant] cursor.All")
	}
	return users, nil
}

func (ur *UserRepo) Exists(id, tenantID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	count, err := ur.collection.CountDocuments(ctx, bson.M{"_id": id, "tenant_id": tenantID})
	if err != nil {
		return false, errors.Wrap(err, "[UserRepo.Exists] CountDocuments")
	}
	return count > 0, nil
}
