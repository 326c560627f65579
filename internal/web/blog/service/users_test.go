package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

func TestRecordSignIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, WithAdminEmails(" Boss@Example.com "))

	u, err := env.svc.RecordSignIn(ctx, dto.SignIn{
		Email: "Ann@Example.com", Name: "Ann", Provider: string(model.AuthProviderGoogle),
	})
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.Equal(t, model.RoleUser, env.svc.RoleOf(u))

	u, err = env.svc.RecordSignIn(ctx, dto.SignIn{
		Email: "ann@example.com", Name: "Other", Provider: string(model.AuthProviderLinkedIn),
	})
	require.NoError(t, err)
	require.Equal(t, "Ann", u.Name)
	require.ElementsMatch(t,
		[]model.AuthProvider{model.AuthProviderGoogle, model.AuthProviderLinkedIn}, u.AuthProviders)

	boss, err := env.svc.RecordSignIn(ctx, dto.SignIn{Email: "boss@example.com", Name: "Boss"})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, boss.Role)
	require.True(t, boss.IsAdmin())

	_, err = env.svc.RecordSignIn(ctx, dto.SignIn{Email: "nope", Provider: "myspace"})
	requireKind(t, err, model.KindValidation)
	typed, _ := model.AsError(err)
	require.Contains(t, typed.Fields, "email")
	require.Contains(t, typed.Fields, "provider")
}

func TestEditorRequests(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.RequestEditor(ctx, "ghost@example.com")
	requireKind(t, err, model.KindNotFound)

	u, err := env.svc.CurrentUser(ctx, dto.SignIn{Email: "ann@example.com", Name: "Ann"})
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, u.Role)

	u, err = env.svc.RequestEditor(ctx, u.Email)
	require.NoError(t, err)
	require.True(t, u.EditorRequest)

	requests, err := env.svc.ListEditorRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	u, err = env.svc.ApproveEditorRequest(ctx, "ANN@example.com")
	require.NoError(t, err)
	require.Equal(t, model.RoleEditor, u.Role)
	require.False(t, u.EditorRequest)

	requests, err = env.svc.ListEditorRequests(ctx)
	require.NoError(t, err)
	require.Empty(t, requests)

	u, err = env.svc.RequestEditor(ctx, u.Email)
	require.NoError(t, err)
	require.False(t, u.EditorRequest, "editors need no request")

	got, err := env.svc.GetUser(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, model.RoleEditor, got.Role)
}

func TestTopics(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	topic, err := env.svc.CreateTopic(ctx, &dto.TopicInput{Name: "Go Tips", Description: "small things"}, "Ann@example.com")
	require.NoError(t, err)
	require.Equal(t, "go-tips", topic.Slug)
	require.Equal(t, "ann@example.com", topic.CreatedBy)

	_, err = env.svc.CreateTopic(ctx, &dto.TopicInput{Name: "go tips!"}, "ann@example.com")
	requireKind(t, err, model.KindDuplicate)
	_, err = env.svc.CreateTopic(ctx, &dto.TopicInput{Name: "??"}, "ann@example.com")
	requireKind(t, err, model.KindValidation)

	_, err = env.svc.CreateTopic(ctx, &dto.TopicInput{Name: "Architecture"}, "ann@example.com")
	require.NoError(t, err)

	topics, err := env.svc.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	require.Equal(t, "Architecture", topics[0].Name)

	got, err := env.svc.GetTopic(ctx, "go-tips")
	require.NoError(t, err)
	require.Equal(t, topic.ID, got.ID)
	_, err = env.svc.GetTopic(ctx, "missing")
	requireKind(t, err, model.KindNotFound)
}
