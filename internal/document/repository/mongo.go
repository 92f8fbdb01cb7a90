package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
)

// MongoStore implements Store on two collections, "documents" and
// "versions". WithTransaction uses a Mongo session so the content write
// and the history append commit together (requires a replica set, which
// the deployment compose file provides).
type MongoStore struct {
	client    *mongo.Client
	documents *mongo.Collection
	versions  *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	documents := db.Collection("documents")
	versions := db.Collection("versions")
	// index for history ordering and counting; errors here are non-fatal
	idx := mongo.IndexModel{Keys: bson.D{{Key: "documentId", Value: 1}, {Key: "createdAt", Value: 1}}}
	versions.Indexes().CreateOne(context.Background(), idx)
	return &MongoStore{client: client, documents: documents, versions: versions}
}

func (m *MongoStore) Create(ctx context.Context, d *document.Document) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.CollaboratorIDs == nil {
		d.CollaboratorIDs = []string{}
	}
	if _, err := m.documents.InsertOne(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

func (m *MongoStore) Load(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	if err := m.documents.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoStore) ListForUser(ctx context.Context, userID string) ([]*document.Document, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"ownerId": userID},
		bson.M{"collaboratorIds": userID},
	}}
	cur, err := m.documents.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoStore) Save(ctx context.Context, d *document.Document) error {
	d.UpdatedAt = time.Now().UTC()
	res, err := m.documents.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.documents.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return document.ErrNotFound
	}
	// history goes with the document
	_, err = m.versions.DeleteMany(ctx, bson.M{"documentId": id})
	return err
}

func (m *MongoStore) AddCollaborator(ctx context.Context, id, userID string) error {
	update := bson.M{
		"$addToSet": bson.M{"collaboratorIds": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := m.documents.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return document.ErrNotFound
	}
	return nil
}

// newVersionID returns an ObjectID hex string. Unlike a random UUID it
// increases with insertion order, so sorting by _id gives a stable
// tie-break when two versions share a createdAt millisecond.
func newVersionID() string {
	return primitive.NewObjectID().Hex()
}

func (m *MongoStore) AppendVersion(ctx context.Context, v *document.Version) error {
	if v.ID == "" {
		v.ID = newVersionID()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := m.versions.InsertOne(ctx, v)
	return err
}

func (m *MongoStore) LatestVersion(ctx context.Context, docID string) (*document.Version, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	var v document.Version
	if err := m.versions.FindOne(ctx, bson.M{"documentId": docID}, opts).Decode(&v); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (m *MongoStore) ListVersions(ctx context.Context, docID string) ([]*document.Version, error) {
	// creation order: createdAt ascending, the creation-ordered _id
	// breaks same-millisecond ties
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.versions.Find(ctx, bson.M{"documentId": docID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Version{}
	for cur.Next(ctx) {
		var v document.Version
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoStore) CountVersions(ctx context.Context, docID string) (int, error) {
	n, err := m.versions.CountDocuments(ctx, bson.M{"documentId": docID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (m *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
