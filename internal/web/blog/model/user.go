package model

import (
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization level of a user. Roles are ordered, a higher
// role holds every permission of the lower ones.
type Role string

const (
	// RoleUser signed-in reader, may comment and request editor access
	RoleUser Role = "user"
	// RoleEditor may create and edit posts and topics
	RoleEditor Role = "editor"
	// RoleAdmin may delete posts and moderate comments
	RoleAdmin Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:   1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants every permission of want.
func (r Role) AtLeast(want Role) bool {
	return roleRank[r] >= roleRank[want] && roleRank[want] > 0
}

// AuthProvider names the identity provider a user signed in with.
type AuthProvider string

const (
	AuthProviderGoogle      AuthProvider = "google"
	AuthProviderLinkedIn    AuthProvider = "linkedin"
	AuthProviderCredentials AuthProvider = "credentials"
)

// Valid reports whether p is a known provider.
func (p AuthProvider) Valid() bool {
	switch p {
	case AuthProviderGoogle, AuthProviderLinkedIn, AuthProviderCredentials:
		return true
	default:
		return false
	}
}

// User blog users, identified by email
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	Name          string             `bson:"name" json:"name"`
	Image         string             `bson:"image" json:"image"`
	Role          Role               `bson:"role" json:"role"`
	AuthProviders []AuthProvider     `bson:"authProviders" json:"auth_providers"`
	EditorRequest bool               `bson:"editorRequest" json:"editor_request"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// Collection returns the name of the MongoDB collection for users
func (User) Collection() string {
	return "users"
}

// NewUser new user with the default role
func NewUser(email string) *User {
	now := gutils.Clock.GetUTCNow()
	return &User{
		Email:     email,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveRole maps unknown or empty stored roles to RoleUser.
func (u *User) EffectiveRole() Role {
	if u == nil || !u.Role.Valid() {
		return RoleUser
	}

	return u.Role
}

// IsAdmin is admin
func (u *User) IsAdmin() bool {
	return u.EffectiveRole() == RoleAdmin
}
