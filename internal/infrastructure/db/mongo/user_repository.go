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
	"github.com/accessly/rbac-service/internal/core/ports"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      primitive.ObjectID `bson:"role"`
	Active    bool               `bson:"active"`
}

type mongoRoleDetails struct {
	RoleName      string   `bson:"roleName"`
	AccessModules []string `bson:"accessModules"`
}

// mongoUserWithRole is the shape produced by the $lookup pipelines.
type mongoUserWithRole struct {
	ID          primitive.ObjectID `bson:"_id"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	Email       string             `bson:"email"`
	Role        primitive.ObjectID `bson:"role,omitempty"`
	Active      bool               `bson:"active,omitempty"`
	RoleDetails *mongoRoleDetails  `bson:"roleDetails,omitempty"`
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.Hex(),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.Password,
		RoleID:       m.Role.Hex(),
		Active:       m.Active,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	roleID, err := primitive.ObjectIDFromHex(user.RoleID)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}

	doc := mongoUser{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      roleID,
		Active:    user.Active,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// SearchWithRoles joins users to roles and filters on the search text across
// user fields, the role name, and the role's access modules. The $unwind
// drops users whose role reference no longer resolves.
func (r *UserRepository) SearchWithRoles(ctx context.Context, text string) ([]domain.UserWithRole, error) {
	regex := primitive.Regex{Pattern: text, Options: "i"}

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         rolesCollection,
			"localField":   "role",
			"foreignField": "_id",
			"as":           "roleDetails",
		}}},
		{{Key: "$unwind", Value: "$roleDetails"}},
		{{Key: "$match", Value: bson.M{
			"$or": bson.A{
				bson.M{"firstName": regex},
				bson.M{"lastName": regex},
				bson.M{"email": regex},
				bson.M{"roleDetails.roleName": regex},
				bson.M{"roleDetails.accessModules": regex},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"firstName":                 1,
			"lastName":                  1,
			"email":                     1,
			"roleDetails.roleName":      1,
			"roleDetails.accessModules": 1,
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUserWithRole
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.UserWithRole, 0, len(docs))
	for _, d := range docs {
		row := domain.UserWithRole{
			ID:        d.ID.Hex(),
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
		}
		if d.RoleDetails != nil {
			row.RoleDetails = domain.RoleDetails{
				RoleName:      d.RoleDetails.RoleName,
				AccessModules: d.RoleDetails.AccessModules,
			}
		}
		users = append(users, row)
	}
	return users, nil
}

// FindByID populates the role via $lookup. The unwind preserves empty joins
// so a user with a dangling role reference is still returned, just without
// role details.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         rolesCollection,
			"localField":   "role",
			"foreignField": "_id",
			"as":           "roleDetails",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$roleDetails",
			"preserveNullAndEmptyArrays": true,
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUserWithRole
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrUserNotFound
	}

	d := docs[0]
	user := &domain.User{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		RoleID:    d.Role.Hex(),
		Active:    d.Active,
	}
	if d.RoleDetails != nil {
		user.RoleDetails = &domain.RoleDetails{
			RoleName:      d.RoleDetails.RoleName,
			AccessModules: d.RoleDetails.AccessModules,
		}
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	// The server rejects an empty $set; an empty patch reads back unchanged.
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	if err := coerceRole(fields); err != nil {
		return nil, err
	}

	var doc mongoUser
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(fields)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAll(ctx context.Context, fields map[string]any) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return 0, fmt.Errorf("bulk same-field update: %w", err)
	}
	return res.ModifiedCount, nil
}

// BulkUpdate batches one $set per user id into a single BulkWrite. There is
// no cross-document atomicity: a mid-batch failure can leave earlier patches
// applied. A malformed id aborts before anything is written.
func (r *UserRepository) BulkUpdate(ctx context.Context, patches []ports.UserPatch) (int64, error) {
	if len(patches) == 0 {
		return 0, nil
	}

	models, err := buildBulkModels(patches)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.BulkWrite(ctx, models)
	if err != nil {
		return 0, fmt.Errorf("bulk update: %w", err)
	}
	return res.ModifiedCount, nil
}

func buildBulkModels(patches []ports.UserPatch) ([]mongo.WriteModel, error) {
	models := make([]mongo.WriteModel, 0, len(patches))
	for _, p := range patches {
		oid, err := primitive.ObjectIDFromHex(p.UserID)
		if err != nil {
			return nil, fmt.Errorf("bulk update: invalid user id %q", p.UserID)
		}
		if err := coerceRole(p.Fields); err != nil {
			return nil, err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": bson.M(p.Fields)}))
	}
	return models, nil
}

// coerceRole rewrites a hex role reference in a patch to an ObjectID. Stored
// as a string it would stop matching the roles join on every read path.
func coerceRole(fields map[string]any) error {
	roleHex, ok := fields["role"].(string)
	if !ok {
		return nil
	}
	roleID, err := primitive.ObjectIDFromHex(roleHex)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	fields["role"] = roleID
	return nil
}

// HasModule answers the access query with a single pipeline: resolve the
// user, join its role, and project whether the module is in the role's set.
// An empty result means the user is missing or its role reference dangles.
func (r *UserRepository) HasModule(ctx context.Context, userID, module string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         rolesCollection,
			"localField":   "role",
			"foreignField": "_id",
			"as":           "roleDetails",
		}}},
		{{Key: "$unwind", Value: "$roleDetails"}},
		{{Key: "$project", Value: bson.M{
			"hasAccess": bson.M{
				"$in": bson.A{module, "$roleDetails.accessModules"},
			},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return false, fmt.Errorf("check access: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		HasAccess bool `bson:"hasAccess"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return false, fmt.Errorf("decode access check: %w", err)
	}
	if len(results) == 0 {
		return false, domain.ErrUserNotFound
	}
	return results[0].HasAccess, nil
}

// EnsureIndexes creates the unique email index login relies on for
// single-match lookups.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
