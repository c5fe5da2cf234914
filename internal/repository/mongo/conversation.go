package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversationCollection struct {
	name     string
	keyField string
}

var conversationCollections = map[domain.ContextKind]conversationCollection{
	domain.KindReport:    {name: CollectionReportChats, keyField: "documentation_id"},
	domain.KindDashboard: {name: CollectionDashboardChats, keyField: "user_id"},
	domain.KindPDF:       {name: CollectionPDFChats, keyField: "pdf_analysis_id"},
	domain.KindVoice:     {name: CollectionVoiceChats, keyField: "user_id"},
}

// ConversationRepository stores one document per (kind, key) with an append-only messages array
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) collection(kind domain.ContextKind) (*mongo.Collection, conversationCollection, error) {
	layout, ok := conversationCollections[kind]
	if !ok {
		return nil, conversationCollection{}, fmt.Errorf("%w: unknown context kind %q", domain.ErrInvalidPayload, kind)
	}
	return r.db.Database.Collection(layout.name), layout, nil
}

// AppendMessage pushes msg onto the conversation, creating it on first use.
// The owner and start_timestamp are only written on insert.
func (r *ConversationRepository) AppendMessage(ctx context.Context, ref domain.ConversationRef, msg domain.Message) error {
	coll, layout, err := r.collection(ref.Kind)
	if err != nil {
		return err
	}

	key, err := objectID(ref.Key)
	if err != nil {
		return err
	}

	setOnInsert := bson.M{
		layout.keyField:   key,
		"start_timestamp": msg.Timestamp,
	}
	if ref.UserID != "" {
		if uid, err := objectID(ref.UserID); err == nil {
			setOnInsert["user_id"] = uid
		}
	}
	if ref.Username != "" {
		setOnInsert["username"] = ref.Username
	}

	filter := bson.M{layout.keyField: key}
	update := bson.M{
		"$push":        bson.M{"messages": msg},
		"$setOnInsert": setOnInsert,
	}
	opts := options.Update().SetUpsert(true)

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Lost a concurrent first-contact race; the document exists now.
		res, err = coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return classify("append message", err)
	}

	log.Ctx(ctx).Debug().
		Str("kind", string(ref.Kind)).
		Str("key", ref.Key).
		Str("role", string(msg.Role)).
		Int64("matched", res.MatchedCount).
		Int64("modified", res.ModifiedCount).
		Int64("upserted", res.UpsertedCount).
		Msg("conversation message appended")

	return nil
}

// ReadRecentMessages returns the trailing limit messages, oldest first.
// A missing conversation yields an empty slice.
func (r *ConversationRepository) ReadRecentMessages(ctx context.Context, kind domain.ContextKind, key string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}

	coll, layout, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	oid, err := objectID(key)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"messages": bson.M{"$slice": -limit},
	})

	var doc domain.Conversation
	err = coll.FindOne(ctx, bson.M{layout.keyField: oid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, classify("read messages", err)
	}

	if doc.Messages == nil {
		return []domain.Message{}, nil
	}
	return doc.Messages, nil
}

// Ping checks store reachability
func (r *ConversationRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
