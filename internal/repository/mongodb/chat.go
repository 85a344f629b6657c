package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ repository.ChatStore = (*ChatRepository)(nil)

type chatDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	SessionID   string        `bson:"session_id"`
	UserID      string        `bson:"user_id,omitempty"`
	UserMessage string        `bson:"user_message"`
	BotResponse string        `bson:"bot_response"`
	Timestamp   time.Time     `bson:"timestamp"`
}

func (d chatDocument) model() model.ChatTurn {
	return model.ChatTurn{
		ID:          d.ID.Hex(),
		SessionID:   d.SessionID,
		UserID:      d.UserID,
		UserMessage: d.UserMessage,
		BotResponse: d.BotResponse,
		Timestamp:   d.Timestamp.UTC(),
	}
}

// ChatRepository stores chat turns in the chats collection.
type ChatRepository struct {
	coll *mongo.Collection
}

// NewChatRepository creates a ChatRepository over coll.
func NewChatRepository(coll *mongo.Collection) *ChatRepository {
	return &ChatRepository{coll: coll}
}

// Append inserts a turn and sets its ID to the hex ObjectID.
func (r *ChatRepository) Append(ctx context.Context, turn *model.ChatTurn) error {
	res, err := r.coll.InsertOne(ctx, chatDocument{
		SessionID:   turn.SessionID,
		UserID:      turn.UserID,
		UserMessage: turn.UserMessage,
		BotResponse: turn.BotResponse,
		Timestamp:   turn.Timestamp,
	})
	if err != nil {
		return err
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	turn.ID = id.Hex()
	return nil
}

// Recent returns at most limit turns in scope, newest first.
func (r *ChatRepository) Recent(ctx context.Context, scope model.AccessScope, limit int) ([]model.ChatTurn, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, scopeFilter(scope), opts)
	if err != nil {
		return nil, err
	}

	var docs []chatDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	turns := make([]model.ChatTurn, len(docs))
	for i, d := range docs {
		turns[i] = d.model()
	}
	return turns, nil
}

// Delete removes every turn in scope.
func (r *ChatRepository) Delete(ctx context.Context, scope model.AccessScope) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, scopeFilter(scope))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func scopeFilter(scope model.AccessScope) bson.D {
	filter := bson.D{{Key: "session_id", Value: scope.SessionID}}
	if scope.IsOwned() {
		filter = append(filter, bson.E{Key: "user_id", Value: scope.UserID})
	}
	return filter
}
