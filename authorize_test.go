package identity_test

import (
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	admin := &identity.User{ID: uuid.New(), Role: identity.RoleAdmin}
	regular := &identity.User{ID: uuid.New(), Role: identity.RoleUser}

	tests := []struct {
		name    string
		user    *identity.User
		wantErr error
	}{
		{name: "admin allowed", user: admin, wantErr: nil},
		{name: "regular user denied", user: regular, wantErr: identity.ErrAdminRequired},
		{name: "nil user denied", user: nil, wantErr: identity.ErrAdminRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := identity.RequireAdmin(tt.user)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	adminID := uuid.New()
	userID := uuid.New()
	otherID := uuid.New()

	admin := &identity.User{ID: adminID, Role: identity.RoleAdmin}
	regular := &identity.User{ID: userID, Role: identity.RoleUser}

	tests := []struct {
		name     string
		user     *identity.User
		targetID string
		wantErr  error
	}{
		{name: "user accesses own resource", user: regular, targetID: userID.String(), wantErr: nil},
		{name: "user accesses other resource", user: regular, targetID: otherID.String(), wantErr: identity.ErrSelfOrAdminRequired},
		{name: "admin accesses own resource", user: admin, targetID: adminID.String(), wantErr: nil},
		{name: "admin accesses other resource", user: admin, targetID: otherID.String(), wantErr: nil},
		{name: "nil user denied", user: nil, targetID: otherID.String(), wantErr: identity.ErrSelfOrAdminRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := identity.RequireSelfOrAdmin(tt.user, tt.targetID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
