package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcalendar/internal/domain"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	alice := &domain.User{Username: "Alice", Email: "alice@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, alice))
	require.NotEmpty(t, alice.ID)

	tests := []struct {
		name string
		user *domain.User
	}{
		{"same username different case", &domain.User{Username: "alice", Email: "other@example.com"}},
		{"same email different case", &domain.User{Username: "alicia", Email: "ALICE@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, repo.Create(ctx, tt.user), domain.ErrDuplicateUser)
		})
	}

	got, err := repo.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	got.Username = "mutated"

	got, err = repo.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username, "returned users are copies")

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	bob := &domain.User{Username: "bob", Email: "bob@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, bob))
	users, err := repo.ListByIDs(ctx, []string{alice.ID, "missing", bob.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.ElementsMatch(t, []string{"Alice", "bob"}, []string{users[0].Username, users[1].Username})
}
