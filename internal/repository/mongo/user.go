package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository handles account persistence in the registrations collection
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	domain.User `bson:",inline"`
}

func (d userDocument) toDomain() *domain.User {
	u := d.User
	u.ID = d.ID.Hex()
	return &u
}

// Create inserts a new user and sets its ID
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	doc := userDocument{ID: primitive.NewObjectID(), User: *user}
	if _, err := r.db.Database.Collection(CollectionRegistrations).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return classify("create user", err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a user by ID, nil when absent
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByUsername retrieves a user by username, nil when absent
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var doc userDocument
	err := r.db.Database.Collection(CollectionRegistrations).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", classify("find user", err))
	}

	return doc.toDomain(), nil
}
