//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daybook/daybook/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateUser(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	email := testutil.UniqueEmail("create")
	user := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	if retrieved.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, email)
	}
	if !retrieved.IsActive {
		t.Error("IsActive should be true")
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	email := testutil.UniqueEmail("dup")
	user1 := testutil.NewTestUser(t, email)
	user2 := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, user1); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	err := repo.CreateUser(ctx, user2)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetUserByEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	email := testutil.UniqueEmail("getemail")
	user := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, user.ID)
	}

	_, err = repo.GetUserByEmail(ctx, testutil.UniqueEmail("nonexistent"))
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetUserByID_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.GetUserByID(ctx, "nonexistent-id")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_ListUsers_Pagination(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	created := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		user := testutil.NewTestUser(t, testutil.UniqueEmail("page"))
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		created = append(created, user.ID)
		time.Sleep(1 * time.Millisecond)
	}

	page1, err := repo.ListUsers(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(page1))
	}

	page2, err := repo.ListUsers(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListUsers (page 2) failed: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("Expected 2 users on page 2, got %d", len(page2))
	}

	// ULID primary keys sort in insertion order.
	if page1[0].ID != created[0] || page1[1].ID != created[1] {
		t.Errorf("Page 1 out of order: got [%s %s], want [%s %s]",
			page1[0].ID, page1[1].ID, created[0], created[1])
	}
	if page2[0].ID != created[2] || page2[1].ID != created[3] {
		t.Errorf("Page 2 out of order: got [%s %s], want [%s %s]",
			page2[0].ID, page2[1].ID, created[2], created[3])
	}
}

func TestIntegrationUserRepository_UpdateUser(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("update"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.Name = "Renamed User"
	memo := "updated memo"
	user.Memo = &memo
	user.UpdatedAt = time.Now().UTC()

	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.Name != "Renamed User" {
		t.Errorf("Name not updated: got %q", retrieved.Name)
	}
	if retrieved.Memo == nil || *retrieved.Memo != memo {
		t.Errorf("Memo not updated: got %v", retrieved.Memo)
	}
}

func TestIntegrationUserRepository_UpdateUser_EmailConflict(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	taken := testutil.UniqueEmail("taken")
	user1 := testutil.NewTestUser(t, taken)
	user2 := testutil.NewTestUser(t, testutil.UniqueEmail("other"))

	if err := repo.CreateUser(ctx, user1); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}
	if err := repo.CreateUser(ctx, user2); err != nil {
		t.Fatalf("CreateUser (second) failed: %v", err)
	}

	user2.Email = taken
	err := repo.UpdateUser(ctx, user2)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdateUser_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("ghost"))
	err := repo.UpdateUser(ctx, user)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_DeleteUser_CascadesNotesAndTags(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("cascade"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	tag := testutil.UniqueTag("cascade")
	note := testutil.NewTestNote(t, user.ID, tag)
	if err := repo.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := repo.GetUserByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound after delete, got: %v", err)
	}
	if _, err := repo.GetNote(ctx, user.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound after cascade, got: %v", err)
	}

	exists, err := repo.TagExists(ctx, tag)
	if err != nil {
		t.Fatalf("TagExists failed: %v", err)
	}
	if exists {
		t.Error("Tag should be swept once its last note is cascade-deleted")
	}
}

func TestIntegrationUserRepository_DeleteUser_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	err := repo.DeleteUser(ctx, "nonexistent-id")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
