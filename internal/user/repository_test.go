package user

import (
	"context"
	"sync"
	"testing"

	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"
	"github.com/intrpom/Kurzy-sub001/internal/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertByEmail(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.UpsertByEmail(ctx, "ada@example.com", "Ada")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, userModel.RoleUser, created.Role)
	assert.Equal(t, "Ada", created.Name)

	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{name: "empty name keeps stored", input: "", wantName: "Ada"},
		{name: "same name", input: "Ada", wantName: "Ada"},
		{name: "new name replaces", input: "Ada Lovelace", wantName: "Ada Lovelace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := repo.UpsertByEmail(ctx, "ada@example.com", tt.input)
			require.NoError(t, err)
			assert.Equal(t, created.ID, u.ID)
			assert.Equal(t, tt.wantName, u.Name)
		})
	}

	var count int64
	require.NoError(t, db.Model(&userModel.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertByEmail_CaseSensitive(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewUserRepository(db)

	a, err := repo.UpsertByEmail(context.Background(), "ada@example.com", "")
	require.NoError(t, err)
	b, err := repo.UpsertByEmail(context.Background(), "Ada@example.com", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpsertByEmail_Concurrent(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewUserRepository(db)

	var wg sync.WaitGroup
	ids := make([]uint, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.UpsertByEmail(context.Background(), "race@example.com", "")
			if assert.NoError(t, err) {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestUpdateRole(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewUserRepository(db)
	u := testutils.CreateTestUser(db)

	updated, err := repo.UpdateRole(context.Background(), u.ID, userModel.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, userModel.RoleAdmin, updated.Role)

	_, err = repo.UpdateRole(context.Background(), 9999, userModel.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
