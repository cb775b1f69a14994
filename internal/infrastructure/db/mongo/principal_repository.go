package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicsync/civicsync-api/internal/core/domain"
)

const principalsCollection = "principals"

// PrincipalRepository persists citizens and authorities in a single
// tagged collection. The unique index on email enforces the global
// uniqueness invariant across both roles atomically.
type PrincipalRepository struct {
	coll *mongo.Collection
}

func NewPrincipalRepository(db *mongo.Database) *PrincipalRepository {
	return &PrincipalRepository{coll: db.Collection(principalsCollection)}
}

type mongoPrincipal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Department   string             `bson:"department,omitempty"`
	Points       int64              `bson:"points"`
	CreatedAt    int64              `bson:"created_at"`
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPrincipal{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		Department:   p.Department,
		Points:       p.Points,
		CreatedAt:    p.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, storeErr("insert principal", err)
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	doc.ID = oid
	return toPrincipal(doc), nil
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPrincipal
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, storeErr("find principal by email", err)
	}
	return toPrincipal(mp), nil
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*domain.Principal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPrincipalNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPrincipal
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, storeErr("find principal", err)
	}
	return toPrincipal(mp), nil
}

func (r *PrincipalRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Principal, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // unknown ids are simply absent from the result
		}
		oids = append(oids, oid)
	}

	result := make(map[string]*domain.Principal, len(oids))
	if len(oids) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, storeErr("find principals", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var mp mongoPrincipal
		if err := cursor.Decode(&mp); err != nil {
			return nil, storeErr("decode principal", err)
		}
		result[mp.ID.Hex()] = toPrincipal(mp)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("iterate principals", err)
	}
	return result, nil
}

// AwardPoints atomically increments the points counter with $inc.
func (r *PrincipalRepository) AwardPoints(ctx context.Context, id string, amount int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPrincipalNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"points": amount}})
	if err != nil {
		return storeErr("award points", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index backing the
// cross-role uniqueness invariant.
func (r *PrincipalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toPrincipal(mp mongoPrincipal) *domain.Principal {
	return &domain.Principal{
		ID:           mp.ID.Hex(),
		Name:         mp.Name,
		Email:        mp.Email,
		PasswordHash: mp.PasswordHash,
		Role:         mp.Role,
		Department:   mp.Department,
		Points:       mp.Points,
		CreatedAt:    time.Unix(mp.CreatedAt, 0).UTC(),
	}
}
