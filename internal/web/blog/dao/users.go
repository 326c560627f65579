package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// GetUserByEmail load user by email
func (d *Blog) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := new(model.User)
	if err := d.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(u); err != nil {
		return nil, notFoundOr(err, "find user %q", email)
	}

	return u, nil
}

// UpsertUser creates u on first sign-in and records provider on the stored
// user. Profile fields of an existing user are left untouched.
func (d *Blog) UpsertUser(ctx context.Context, u *model.User, provider model.AuthProvider) (*model.User, error) {
	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "name", Value: u.Name},
			{Key: "image", Value: u.Image},
			{Key: "role", Value: u.Role},
			{Key: "editorRequest", Value: false},
			{Key: "createdAt", Value: u.CreatedAt},
		}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: u.UpdatedAt}}},
	}
	if provider != "" {
		update = append(update, bson.E{Key: "$addToSet", Value: bson.D{{Key: "authProviders", Value: provider}}})
	}

	stored := new(model.User)
	if err := d.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "email", Value: u.Email}},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(stored); err != nil {
		return nil, errors.Wrapf(err, "upsert user %q", u.Email)
	}

	return stored, nil
}

// UpdateUser sets role and editorRequest of the user of email.
// A nil argument leaves that field untouched.
func (d *Blog) UpdateUser(ctx context.Context, email string, role *model.Role, editorRequest *bool) (*model.User, error) {
	set := bson.D{}
	if role != nil {
		set = append(set, bson.E{Key: "role", Value: *role})
	}
	if editorRequest != nil {
		set = append(set, bson.E{Key: "editorRequest", Value: *editorRequest})
	}
	if len(set) == 0 {
		return d.GetUserByEmail(ctx, email)
	}

	u := new(model.User)
	if err := d.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: set}, {Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(u); err != nil {
		return nil, notFoundOr(err, "update user %q", email)
	}

	return u, nil
}

// ListEditorRequests returns users with a pending editor request, oldest first.
func (d *Blog) ListEditorRequests(ctx context.Context) ([]*model.User, error) {
	cur, err := d.users.Find(ctx,
		bson.D{
			{Key: "editorRequest", Value: true},
			{Key: "role", Value: model.RoleUser},
		},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find editor requests")
	}

	users := []*model.User{}
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "load editor requests")
	}

	return users, nil
}
