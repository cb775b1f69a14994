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

const issuesCollection = "issues"

// IssueRepository persists issues. Lifecycle transitions are
// compare-and-swap updates: the precondition (status, and assignee for
// resolve) lives in the query filter so two concurrent transitions on
// the same issue can never both match.
type IssueRepository struct {
	coll *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{coll: db.Collection(issuesCollection)}
}

type mongoIssue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Location    string             `bson:"location,omitempty"`
	RaisedBy    string             `bson:"raised_by"`
	AssignedTo  string             `bson:"assigned_to,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	ResolvedAt  time.Time          `bson:"resolved_at,omitempty"`
	Upvotes     int64              `bson:"upvotes"`
	Downvotes   int64              `bson:"downvotes"`
}

func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) (*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoIssue{
		Title:       issue.Title,
		Description: issue.Description,
		Location:    issue.Location,
		RaisedBy:    issue.RaisedBy,
		Status:      string(issue.Status),
		CreatedAt:   issue.CreatedAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, storeErr("insert issue", err)
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	doc.ID = oid
	return toIssue(doc), nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mi mongoIssue
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, storeErr("find issue", err)
	}
	return toIssue(mi), nil
}

func (r *IssueRepository) List(ctx context.Context) ([]*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list issues", err)
	}
	defer cursor.Close(ctx)

	var issues []*domain.Issue
	for cursor.Next(ctx) {
		var mi mongoIssue
		if err := cursor.Decode(&mi); err != nil {
			return nil, storeErr("decode issue", err)
		}
		issues = append(issues, toIssue(mi))
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("iterate issues", err)
	}
	return issues, nil
}

// AssignIfPending claims a pending issue for an authority in one atomic
// step. A miss means the filter did not match: absent issue or not
// pending any more.
func (r *IssueRepository) AssignIfPending(ctx context.Context, issueID, authorityID string) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	filter := bson.M{"_id": oid, "status": string(domain.StatusPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(domain.StatusInProgress),
		"assigned_to": authorityID,
	}}
	return r.findOneAndUpdate(ctx, filter, update, "assign issue")
}

// ResolveIfAssigned closes an in-progress issue, but only for the
// authority recorded in assigned_to.
func (r *IssueRepository) ResolveIfAssigned(ctx context.Context, issueID, authorityID string, resolvedAt time.Time) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	filter := bson.M{
		"_id":         oid,
		"status":      string(domain.StatusInProgress),
		"assigned_to": authorityID,
	}
	update := bson.M{"$set": bson.M{
		"status":      string(domain.StatusResolved),
		"resolved_at": resolvedAt.UTC(),
	}}
	return r.findOneAndUpdate(ctx, filter, update, "resolve issue")
}

func (r *IssueRepository) IncrementVotes(ctx context.Context, issueID string, upvote bool) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	field := "upvotes"
	if !upvote {
		field = "downvotes"
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{field: 1}}, "increment votes")
}

func (r *IssueRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, op string) (*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mi mongoIssue
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, storeErr(op, err)
	}
	return toIssue(mi), nil
}

// EnsureIndexes creates the query indexes on the issues collection.
func (r *IssueRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "raised_by", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func toIssue(mi mongoIssue) *domain.Issue {
	return &domain.Issue{
		ID:          mi.ID.Hex(),
		Title:       mi.Title,
		Description: mi.Description,
		Location:    mi.Location,
		RaisedBy:    mi.RaisedBy,
		AssignedTo:  mi.AssignedTo,
		Status:      domain.IssueStatus(mi.Status),
		CreatedAt:   mi.CreatedAt,
		ResolvedAt:  mi.ResolvedAt,
		Upvotes:     mi.Upvotes,
		Downvotes:   mi.Downvotes,
	}
}
