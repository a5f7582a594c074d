package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

// Collection names shared with the original deployment.
const (
	UsersCollection    = "users"
	TrainersCollection = "trainner"
	ClassesCollection  = "class"
)

// Compile-time interface assertions.
var (
	_ UserRepository    = (*MongoUserRepo)(nil)
	_ TrainerRepository = (*MongoTrainerRepo)(nil)
	_ ClassRepository   = (*MongoClassRepo)(nil)
)

// NewMongoStores binds the repositories to collections of db.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Users:    NewMongoUserRepo(db.Collection(UsersCollection)),
		Trainers: NewMongoTrainerRepo(db.Collection(TrainersCollection)),
		Classes:  NewMongoClassRepo(db.Collection(ClassesCollection)),
		Health:   mongoPinger{client: db.Client()},
	}
}

// EnsureIndexes creates the unique email index on the users collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: domain.FieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}

// MongoUserRepo implements UserRepository on the users collection.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(coll *mongo.Collection) *MongoUserRepo {
	return &MongoUserRepo{coll: coll}
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "get user by email", bson.M{domain.FieldEmail: email})
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, "get user by id", idFilter(id))
}

func (r *MongoUserRepo) findOne(ctx context.Context, op string, filter bson.M) (domain.User, error) {
	doc, err := findOneDocument(ctx, r.coll, op, filter)
	if err != nil {
		return domain.User{}, err
	}
	user, err := domain.UserFromDocument(doc)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
	return user, nil
}

func (r *MongoUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if filter.Status != domain.StatusUnset {
		query[domain.FieldStatus] = string(filter.Status)
	}
	docs, err := findDocuments(ctx, r.coll, "list users", query, nil)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		user, err := domain.UserFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("list users: %w: %w", domain.ErrStorage, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *MongoUserRepo) Insert(ctx context.Context, user domain.User) (domain.WriteResult, error) {
	return insertOne(ctx, r.coll, "insert user", user.Document())
}

func (r *MongoUserRepo) Update(ctx context.Context, email string, set domain.Document) (domain.WriteResult, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{domain.FieldEmail: email},
		bson.M{"$set": bson.M(set.Without(domain.FieldID, domain.FieldEmail))},
	)
	if err != nil {
		return domain.WriteResult{}, mongoError("update user", err)
	}
	return updateResult(res), nil
}

func (r *MongoUserRepo) Upsert(ctx context.Context, email, id string, set domain.Document) (domain.WriteResult, error) {
	update := bson.M{"$setOnInsert": bson.M{domain.FieldID: id}}
	if patch := set.Without(domain.FieldID, domain.FieldEmail); len(patch) > 0 {
		update["$set"] = bson.M(patch)
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{domain.FieldEmail: email},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return domain.WriteResult{}, mongoError("upsert user", err)
	}
	return updateResult(res), nil
}

// MongoTrainerRepo implements TrainerRepository.
type MongoTrainerRepo struct {
	coll *mongo.Collection
}

func NewMongoTrainerRepo(coll *mongo.Collection) *MongoTrainerRepo {
	return &MongoTrainerRepo{coll: coll}
}

func (r *MongoTrainerRepo) List(ctx context.Context) ([]domain.Document, error) {
	return findDocuments(ctx, r.coll, "list trainers", bson.M{}, nil)
}

func (r *MongoTrainerRepo) GetByID(ctx context.Context, id string) (domain.Document, error) {
	return findOneDocument(ctx, r.coll, "get trainer", idFilter(id))
}

func (r *MongoTrainerRepo) Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	return insertOne(ctx, r.coll, "insert trainer", doc)
}

// MongoClassRepo implements ClassRepository.
type MongoClassRepo struct {
	coll *mongo.Collection
}

func NewMongoClassRepo(coll *mongo.Collection) *MongoClassRepo {
	return &MongoClassRepo{coll: coll}
}

func (r *MongoClassRepo) List(ctx context.Context, page domain.Page) ([]domain.Document, error) {
	var opts *options.FindOptionsBuilder
	if page.Limit > 0 {
		opts = options.Find().SetSkip(page.Skip).SetLimit(page.Limit)
	}
	return findDocuments(ctx, r.coll, "list classes", bson.M{}, opts)
}

func (r *MongoClassRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, mongoError("count classes", err)
	}
	return n, nil
}

func (r *MongoClassRepo) Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	return insertOne(ctx, r.coll, "insert class", doc)
}

// idFilter matches string ids and, for 24 hex digit ids, legacy ObjectIDs.
func idFilter(id string) bson.M {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{domain.FieldID: bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{domain.FieldID: id}
}

func findOneDocument(ctx context.Context, coll *mongo.Collection, op string, filter bson.M) (domain.Document, error) {
	var raw bson.M
	if err := coll.FindOne(ctx, filter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, mongoError(op, err)
	}
	return normalizeDocument(raw), nil
}

func findDocuments(ctx context.Context, coll *mongo.Collection, op string, filter bson.M, opts *options.FindOptionsBuilder) ([]domain.Document, error) {
	var (
		cur *mongo.Cursor
		err error
	)
	if opts != nil {
		cur, err = coll.Find(ctx, filter, opts)
	} else {
		cur, err = coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, mongoError(op, err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, mongoError(op, err)
	}
	docs := make([]domain.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, normalizeDocument(m))
	}
	return docs, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, op string, doc domain.Document) (domain.WriteResult, error) {
	res, err := coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return domain.WriteResult{}, mongoError(op, err)
	}
	return domain.WriteResult{Acknowledged: res.Acknowledged, InsertedID: idValue(res.InsertedID)}, nil
}

func updateResult(res *mongo.UpdateResult) domain.WriteResult {
	return domain.WriteResult{
		Acknowledged:  res.Acknowledged,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    idValue(res.UpsertedID),
	}
}

func mongoError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: duplicate key: %w", op, domain.ErrStorage, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

func idValue(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// normalizeDocument converts driver values into plain Go values so the
// document renders the same way regardless of driver.
func normalizeDocument(m bson.M) domain.Document {
	doc := make(domain.Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.M:
		return map[string]any(normalizeDocument(val))
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case bson.DateTime:
		return val.Time().UTC()
	default:
		return v
	}
}
