package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoChallenge struct {
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
	Confirmed bool      `bson:"confirmed"`
}

type mongoUser struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Login             string             `bson:"login"`
	Email             string             `bson:"email"`
	PasswordHash      string             `bson:"password_hash"`
	IsEmailConfirmed  bool               `bson:"is_email_confirmed"`
	EmailConfirmation *mongoChallenge    `bson:"email_confirmation,omitempty"`
	PasswordRecovery  *mongoChallenge    `bson:"password_recovery,omitempty"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
	DeletedAt         *time.Time         `bson:"deleted_at"`
}

// notDeleted scopes every query to active users; soft-deleted documents stay
// in the collection but are invisible to the application.
func notDeleted() bson.M {
	return bson.M{"deleted_at": nil}
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	filter := notDeleted()
	filter["login"] = login
	return r.findOne(ctx, filter)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	filter := notDeleted()
	filter["email"] = email
	return r.findOne(ctx, filter)
}

func (r *UserRepository) FindByLoginOrEmail(ctx context.Context, value string) (*domain.User, error) {
	filter := notDeleted()
	filter["$or"] = bson.A{bson.M{"login": value}, bson.M{"email": value}}
	return r.findOne(ctx, filter)
}

func (r *UserRepository) FindByConfirmationCode(ctx context.Context, code string) (*domain.User, error) {
	filter := notDeleted()
	filter["email_confirmation.code"] = code
	return r.findOne(ctx, filter)
}

func (r *UserRepository) FindByRecoveryCode(ctx context.Context, code string) (*domain.User, error) {
	filter := notDeleted()
	filter["password_recovery.code"] = code
	return r.findOne(ctx, filter)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not a valid document id, so no document can match.
		return nil, nil
	}
	filter := notDeleted()
	filter["_id"] = oid
	return r.findOne(ctx, filter)
}

// Create inserts a new user. The unique indexes on login and email are the
// final guard against concurrent registrations; a duplicate-key error is
// surfaced as the same AlreadyExists failure the factory's lookups produce.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDocument(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewError(domain.CodeAlreadyExists, "Login or Email already exists!")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	created := *user
	created.ID = oid.Hex()
	return &created, nil
}

// Save replaces the stored document for the given user and bumps UpdatedAt.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("save user: invalid id %q", user.ID)
	}

	user.UpdatedAt = time.Now().UTC()
	doc := toDocument(user)
	doc.ID = oid

	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// List returns a page of active users matching query and the total count.
func (r *UserRepository) List(ctx context.Context, query ports.ListUsersQuery) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := notDeleted()
	var terms bson.A
	if query.SearchLoginTerm != "" {
		terms = append(terms, bson.M{"login": primitive.Regex{Pattern: query.SearchLoginTerm, Options: "i"}})
	}
	if query.SearchEmailTerm != "" {
		terms = append(terms, bson.M{"email": primitive.Regex{Pattern: query.SearchEmailTerm, Options: "i"}})
	}
	if len(terms) > 0 {
		filter["$or"] = terms
	}

	direction := -1
	if query.SortDirection == "asc" {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: query.SortBy, Value: direction}}).
		SetSkip(int64((query.PageNumber - 1) * query.PageSize)).
		SetLimit(int64(query.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("list users: decode: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: count: %w", err)
	}

	users := make([]*domain.User, len(docs))
	for i := range docs {
		users[i] = toDomain(&docs[i])
	}
	return users, total, nil
}

// EnsureIndexes creates the unique partial indexes on login and email plus
// lookup indexes for the code finders. Uniqueness is scoped to non-deleted
// documents so a soft-deleted account does not block re-registration.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	activeOnly := bson.M{"deleted_at": bson.M{"$type": "null"}}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "login", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{Keys: bson.D{{Key: "email_confirmation.code", Value: 1}}},
		{Keys: bson.D{{Key: "password_recovery.code", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(&doc), nil
}

func toDocument(u *domain.User) *mongoUser {
	return &mongoUser{
		Login:             u.Login,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		IsEmailConfirmed:  u.IsEmailConfirmed,
		EmailConfirmation: challengeToDocument(u.EmailConfirmation),
		PasswordRecovery:  challengeToDocument(u.PasswordRecovery),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		DeletedAt:         u.DeletedAt,
	}
}

func toDomain(doc *mongoUser) *domain.User {
	return &domain.User{
		ID:                doc.ID.Hex(),
		Login:             doc.Login,
		Email:             doc.Email,
		PasswordHash:      doc.PasswordHash,
		IsEmailConfirmed:  doc.IsEmailConfirmed,
		EmailConfirmation: challengeToDomain(doc.EmailConfirmation),
		PasswordRecovery:  challengeToDomain(doc.PasswordRecovery),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
		DeletedAt:         doc.DeletedAt,
	}
}

func challengeToDocument(c *domain.CodeChallenge) *mongoChallenge {
	if c == nil {
		return nil
	}
	return &mongoChallenge{Code: c.Code, ExpiresAt: c.ExpiresAt, Confirmed: c.Confirmed}
}

func challengeToDomain(c *mongoChallenge) *domain.CodeChallenge {
	if c == nil {
		return nil
	}
	return &domain.CodeChallenge{Code: c.Code, ExpiresAt: c.ExpiresAt, Confirmed: c.Confirmed}
}
