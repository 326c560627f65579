package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

func (s *Blog) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[normalizeEmail(email)]
	return ok
}

// RoleOf returns the effective role of u. Configured admin emails are
// always admin.
func (s *Blog) RoleOf(u *model.User) model.Role {
	if u != nil && s.isAdminEmail(u.Email) {
		return model.RoleAdmin
	}

	return u.EffectiveRole()
}

func (s *Blog) getUser(ctx context.Context, email string) (*model.User, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("user %q not found", email)
		}

		return nil, model.NewStorageError(err, "load user %q", email)
	}

	return u, nil
}

// RecordSignIn creates the user on first sign-in and adds the provider to
// its provider set. Profile fields of a known user are kept.
func (s *Blog) RecordSignIn(ctx context.Context, in dto.SignIn) (*model.User, error) {
	errs := fieldErrors{}
	email := errs.checkEmail("email", in.Email)
	provider := model.AuthProvider(in.Provider)
	if provider != "" && !provider.Valid() {
		errs.add("provider", "unknown auth provider %q", in.Provider)
	}
	if err := errs.err(invalidUserMessage); err != nil {
		return nil, err
	}

	now := s.timestamp()
	u := model.NewUser(email)
	u.Name = in.Name
	u.Image = in.Image
	u.CreatedAt = now
	u.UpdatedAt = now

	stored, err := s.store.UpsertUser(ctx, u, provider)
	if err != nil {
		return nil, model.NewStorageError(err, "record sign-in of %q", email)
	}

	if s.isAdminEmail(email) && stored.Role != model.RoleAdmin {
		role := model.RoleAdmin
		if stored, err = s.store.UpdateUser(ctx, email, &role, nil); err != nil {
			return nil, model.NewStorageError(err, "promote %q", email)
		}
		s.loggerFromCtx(ctx).Info("promote configured admin", zap.String("email", email))
	}

	return stored, nil
}

// CurrentUser returns the stored user of a signed-in identity, recording
// the sign-in when the user is not known yet.
func (s *Blog) CurrentUser(ctx context.Context, in dto.SignIn) (*model.User, error) {
	u, err := s.getUser(ctx, in.Email)
	if err == nil {
		return u, nil
	}
	if !model.IsKind(err, model.KindNotFound) {
		return nil, err
	}

	return s.RecordSignIn(ctx, in)
}

// GetUser load user by email
func (s *Blog) GetUser(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, email)
}

// RequestEditor flags the user as asking for the editor role.
// Users who already are editors are returned unchanged.
func (s *Blog) RequestEditor(ctx context.Context, email string) (*model.User, error) {
	u, err := s.getUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if s.RoleOf(u).AtLeast(model.RoleEditor) {
		return u, nil
	}

	yes := true
	if u, err = s.store.UpdateUser(ctx, u.Email, nil, &yes); err != nil {
		return nil, model.NewStorageError(err, "request editor for %q", email)
	}

	s.loggerFromCtx(ctx).Info("request editor", zap.String("email", u.Email))
	return u, nil
}

// ListEditorRequests returns users waiting for the editor role.
func (s *Blog) ListEditorRequests(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListEditorRequests(ctx)
	if err != nil {
		return nil, model.NewStorageError(err, "list editor requests")
	}

	return users, nil
}

// ApproveEditorRequest grants the editor role and clears the request.
// Admins keep their role.
func (s *Blog) ApproveEditorRequest(ctx context.Context, email string) (*model.User, error) {
	u, err := s.getUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var role *model.Role
	if !u.EffectiveRole().AtLeast(model.RoleEditor) {
		editor := model.RoleEditor
		role = &editor
	}
	no := false
	if u, err = s.store.UpdateUser(ctx, u.Email, role, &no); err != nil {
		return nil, model.NewStorageError(err, "approve editor request of %q", email)
	}

	s.loggerFromCtx(ctx).Info("approve editor request", zap.String("email", u.Email))
	return u, nil
}
