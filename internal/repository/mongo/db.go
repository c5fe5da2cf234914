package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CollectionReportChats    = "chats"
	CollectionDashboardChats = "general_chats"
	CollectionPDFChats       = "pdf_chats"
	CollectionVoiceChats     = "voice_conversations"
	CollectionDocumentation  = "documentation"
	CollectionPDFAnalysis    = "pdf_analysis"
	CollectionRegistrations  = "registrations"
)

const defaultOperationTimeout = 15 * time.Second

// DB wraps the Mongo client and the application database
type DB struct {
	Client    *mongo.Client
	Database  *mongo.Database
	opTimeout time.Duration
}

// NewDB connects to Mongo and verifies the connection
func NewDB(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		clientOpts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &DB{
		Client:    client,
		Database:  client.Database(cfg.Database),
		opTimeout: cfg.OperationTimeout,
	}, nil
}

// NewFromDatabase wraps an already connected database
func NewFromDatabase(db *mongo.Database, opTimeout time.Duration) *DB {
	return &DB{Client: db.Client(), Database: db, opTimeout: opTimeout}
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	if err := db.Client.Ping(ctx, nil); err != nil {
		return classify("ping mongo", err)
	}
	return nil
}

// Close disconnects the client
func (db *DB) Close(ctx context.Context) error {
	if db.Client == nil {
		return nil
	}
	return db.Client.Disconnect(ctx)
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := db.opTimeout
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// classify maps driver errors onto the store error taxonomy
func classify(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrPersistence, err)
}

func isUnavailable(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidPayload, id)
	}
	return oid, nil
}
