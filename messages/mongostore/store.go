package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loophq/go-chat-server/messages"
)

var _ messages.Store = (*Store)(nil)

// Store persists direct messages in a Mongo collection. The coordinator's
// streaming fast paths never call the store while holding registry state;
// appends run in the sending connection's own goroutine.
type Store struct {
	collection *mongo.Collection
}

func New(ctx context.Context, db *mongo.Database) (*Store, error) {
	collection := db.Collection("messages")

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenant_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "[mongostore.New] create index")
	}
	return &Store{collection: collection}, nil
}

func (s *Store) Append(ctx context.Context, message *messages.Message) error {
	_, err := s.collection.InsertOne(ctx, message)
	return errors.Wrap(err, "[Store.Append] InsertOne")
}

func (s *Store) History(ctx context.Context, tenantID, userA, userB string, projectID *int64, limit, offset int) ([]*messages.Message, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"$or": bson.A{
			bson.M{"from_user": userA, "recipient_id": userB},
			bson.M{"from_user": userB, "recipient_id": userA},
		},
	}
	if projectID != nil {
		filter["project_id"] = *projectID
	} else {
		filter["project_id"] = bson.M{"$exists": false}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.History] Find")
	}
	defer cursor.Close(ctx)

	conversation := make([]*messages.Message, 0)
	if err := cursor.All(ctx, &conversation); err != nil {
		return nil, errors.Wrap(err, "[Store.History] cursor.All")
	}

	// Query returns newest first for paging; flip to chronological order.
	for i, j := 0, len(conversation)-1; i < j; i, j = i+1, j-1 {
		conversation[i], conversation[j] = conversation[j], conversation[i]
	}
	return conversation, nil
}
