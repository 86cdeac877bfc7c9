package mongorepo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loophq/go-chat-server/directory"
	internalerrors "github.com/loophq/go-chat-server/internal/errors"
)

var _ directory.TenantRepo = (*TenantRepo)(nil)

type TenantRepo struct {
	collection *mongo.Collection
}

func NewTenantRepo(db *mongo.Database) *TenantRepo {
	return &TenantRepo{collection: db.Collection("tenants")}
}

func (tr *TenantRepo) Upsert(tenant *directory.Tenant) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	filter := bson.M{"_id": tenant.ID}
	update := bson.M{"$set": tenant}
	_, err := tr.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return errors.Wrap(err, "[TenantRepo.Upsert] UpdateOne")
}

func (tr *TenantRepo) Delete(tenantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	result, err := tr.collection.DeleteOne(ctx, bson.M{"_id": tenantID})
	if err != nil {
		return errors.Wrap(err, "[TenantRepo.Delete] DeleteOne")
	}
	if result.DeletedCount == 0 {
		return internalerrors.ErrTenantNotFound
	}
	return nil
}

func (tr *TenantRepo) Get(tenantID string) (*directory.Tenant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var tenant directory.Tenant
	err := tr.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&tenant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, internalerrors.ErrTenantNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[TenantRepo.Get] FindOne")
	}
	return &tenant, nil
}

func (tr *TenantRepo) List(offset, limit int) ([]*directory.Tenant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := tr.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "[TenantRepo.List] Find")
	}
	defer cursor.Close(ctx)

	tenants := make([]*directory.Tenant, 0)
	if err := cursor.All(ctx, &tenants); err != nil {
		return nil, errors.Wrap(err, "[TenantRepo.List] cursor.All")
	}
	return tenants, nil
}
