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

	"github.com/accessly/rbac-service/internal/core/domain"
)

const rolesCollection = "roles"

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

// mongoRole mirrors the stored document. Field names are part of the wire
// contract: search and join pipelines reference them literally.
type mongoRole struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	RoleName      string             `bson:"roleName"`
	AccessModules []string           `bson:"accessModules"`
	CreatedAt     time.Time          `bson:"createdAt"`
	Active        bool               `bson:"active"`
}

func (m *mongoRole) toDomain() *domain.Role {
	modules := m.AccessModules
	if modules == nil {
		modules = []string{}
	}
	return &domain.Role{
		ID:            m.ID.Hex(),
		RoleName:      m.RoleName,
		AccessModules: modules,
		CreatedAt:     m.CreatedAt,
		Active:        m.Active,
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	doc := mongoRole{
		RoleName:      role.RoleName,
		AccessModules: role.AccessModules,
		CreatedAt:     role.CreatedAt,
		Active:        role.Active,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// Search runs the role listing pipeline: a case-insensitive regex match on
// roleName followed by a projection of the exposed fields. Empty text matches
// every role.
func (r *RoleRepository) Search(ctx context.Context, text string) ([]domain.Role, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"roleName": primitive.Regex{Pattern: text, Options: "i"},
		}}},
		{{Key: "$project", Value: bson.M{
			"roleName":      1,
			"accessModules": 1,
			"createdAt":     1,
			"active":        1,
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search roles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoRole
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(docs))
	for i := range docs {
		roles = append(roles, *docs[i].toDomain())
	}
	return roles, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}

	var doc mongoRole
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}

	// The server rejects an empty $set; an empty patch reads back unchanged.
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	var doc mongoRole
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(fields)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRoleNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) ReplaceModules(ctx context.Context, id string, modules []string) (*domain.Role, error) {
	return r.Update(ctx, id, map[string]any{"accessModules": modules})
}

// AddModule performs an atomic $addToSet. A zero modified count means the
// role is missing or the module was already present; the two are reported as
// one condition.
func (r *RoleRepository) AddModule(ctx context.Context, id, module string) (*domain.Role, error) {
	return r.mutateModules(ctx, id, bson.M{"$addToSet": bson.M{"accessModules": module}})
}

// RemoveModule performs an atomic $pull, removing every occurrence.
func (r *RoleRepository) RemoveModule(ctx context.Context, id, module string) (*domain.Role, error) {
	return r.mutateModules(ctx, id, bson.M{"$pull": bson.M{"accessModules": module}})
}

func (r *RoleRepository) mutateModules(ctx context.Context, id string, update bson.M) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrModuleUnchanged
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, fmt.Errorf("mutate access modules: %w", err)
	}
	if res.ModifiedCount == 0 {
		return nil, domain.ErrModuleUnchanged
	}

	return r.FindByID(ctx, id)
}

// EnsureIndexes creates the unique index backing roleName uniqueness.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roleName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
