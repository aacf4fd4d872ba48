//go:build integration

package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/repository"
	"github.com/daybook/daybook/internal/testutil"
)

// ============================================================================
// User Service Integration Tests
// ============================================================================

func TestIntegrationUserService_RegisterAndAuthenticate(t *testing.T) {
	ctx, env := newServiceTestEnv(t)

	email := testutil.UniqueEmail("login")
	user, err := env.users.CreateUser(ctx, CreateUserInput{
		Name:     "Login User",
		Email:    email,
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.PasswordHash == "correct horse battery staple" {
		t.Fatal("Password must not be stored in plaintext")
	}

	authed, err := env.users.Authenticate(ctx, email, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Errorf("Authenticated wrong user: got %s, want %s", authed.ID, user.ID)
	}

	if _, err := env.users.Authenticate(ctx, email, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for bad password, got: %v", err)
	}
	if _, err := env.users.Authenticate(ctx, testutil.UniqueEmail("ghost"), "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got: %v", err)
	}

	snap := env.recorder.Snapshot()
	if snap.LoginsSucceeded != 1 {
		t.Errorf("LoginsSucceeded = %d, want 1", snap.LoginsSucceeded)
	}
	if snap.LoginsFailed != 2 {
		t.Errorf("LoginsFailed = %d, want 2", snap.LoginsFailed)
	}
}

func TestIntegrationUserService_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, env := newServiceTestEnv(t)

	email := testutil.UniqueEmail("dup")
	input := CreateUserInput{Name: "First", Email: email, Password: "secret123"}

	if _, err := env.users.CreateUser(ctx, input); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	_, err := env.users.CreateUser(ctx, input)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserService_UpdateUser_RehashesPassword(t *testing.T) {
	ctx, env := newServiceTestEnv(t)

	email := testutil.UniqueEmail("rehash")
	user, err := env.users.CreateUser(ctx, CreateUserInput{
		Name:     "Rehash User",
		Email:    email,
		Password: "old password",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	newPassword := "new password"
	if _, err := env.users.UpdateUser(ctx, user.ID, model.UserPatch{Password: &newPassword}); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if _, err := env.users.Authenticate(ctx, email, "old password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Old password should no longer authenticate, got: %v", err)
	}
	if _, err := env.users.Authenticate(ctx, email, newPassword); err != nil {
		t.Errorf("New password should authenticate: %v", err)
	}
}

func TestIntegrationUserService_DeleteUser_CascadesNotes(t *testing.T) {
	ctx, env := newServiceTestEnv(t)

	user, err := env.users.CreateUser(ctx, CreateUserInput{
		Name:     "Cascade User",
		Email:    testutil.UniqueEmail("cascade"),
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	note, err := env.notes.CreateNote(ctx, user.ID, CreateNoteInput{
		Title:    "doomed",
		Content:  "goes with the account",
		MemoDate: "20260901",
		Tags:     []string{testutil.UniqueTag("doomed")},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if err := env.users.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := env.users.GetUser(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound after delete, got: %v", err)
	}
	if _, err := env.notes.GetNote(ctx, user.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound after cascade, got: %v", err)
	}
}

// ============================================================================
// Note Service Integration Tests
// ============================================================================

func TestIntegrationNoteService_CreateNote_DeduplicatesTags(t *testing.T) {
	ctx, env := newServiceTestEnv(t)
	user := registerUser(t, ctx, env, "dedupe")

	tag := testutil.UniqueTag("work")
	note, err := env.notes.CreateNote(ctx, user.ID, CreateNoteInput{
		Title:    "deduped",
		Content:  "content",
		MemoDate: "20260901",
		Tags:     []string{tag, tag, tag},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	retrieved, err := env.notes.GetNote(ctx, user.ID, note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if !reflect.DeepEqual(retrieved.Tags, []string{tag}) {
		t.Errorf("Tags not deduplicated: got %v, want [%s]", retrieved.Tags, tag)
	}
}

func TestIntegrationNoteService_UpdateNote_OmittedTagsPreserved(t *testing.T) {
	ctx, env := newServiceTestEnv(t)
	user := registerUser(t, ctx, env, "patch")

	tag := testutil.UniqueTag("keep")
	note, err := env.notes.CreateNote(ctx, user.ID, CreateNoteInput{
		Title:    "original",
		Content:  "content",
		MemoDate: "20260901",
		Tags:     []string{tag},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	title := "patched"
	updated, err := env.notes.UpdateNote(ctx, user.ID, note.ID, model.NotePatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}

	if updated.Title != "patched" {
		t.Errorf("Title not patched: got %q", updated.Title)
	}
	if !reflect.DeepEqual(updated.Tags, []string{tag}) {
		t.Errorf("Omitted tag list must preserve associations: got %v", updated.Tags)
	}
}

func TestIntegrationNoteService_ListNotes_Paging(t *testing.T) {
	ctx, env := newServiceTestEnv(t)
	user := registerUser(t, ctx, env, "paging")

	for i := 0; i < 15; i++ {
		if _, err := env.notes.CreateNote(ctx, user.ID, CreateNoteInput{
			Title:    "note",
			Content:  "content",
			MemoDate: "20260901",
		}); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
	}

	page, err := env.notes.ListNotes(ctx, user.ID, 2, 10)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}

	if page.TotalCount != 15 {
		t.Errorf("TotalCount = %d, want 15", page.TotalCount)
	}
	if page.Page != 2 || page.ItemsPerPage != 10 {
		t.Errorf("Page metadata mismatch: page=%d ipp=%d", page.Page, page.ItemsPerPage)
	}
	if len(page.Notes) != 5 {
		t.Errorf("Expected 5 notes on page 2, got %d", len(page.Notes))
	}
}

func TestIntegrationNoteService_Ownership(t *testing.T) {
	ctx, env := newServiceTestEnv(t)
	alice := registerUser(t, ctx, env, "alice")
	bob := registerUser(t, ctx, env, "bob")

	note, err := env.notes.CreateNote(ctx, bob.ID, CreateNoteInput{
		Title:    "private",
		Content:  "bob only",
		MemoDate: "20260901",
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if _, err := env.notes.GetNote(ctx, alice.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound for foreign note, got: %v", err)
	}
	if err := env.notes.DeleteNote(ctx, alice.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound deleting foreign note, got: %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

type serviceTestEnv struct {
	users    *UserService
	notes    *NoteService
	recorder *metrics.InMemoryRecorder
}

func newServiceTestEnv(t *testing.T) (context.Context, *serviceTestEnv) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
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

	recorder := metrics.NewInMemory()
	return ctx, &serviceTestEnv{
		users:    NewUserService(repo, recorder),
		notes:    NewNoteService(repo, recorder),
		recorder: recorder,
	}
}

func registerUser(t *testing.T, ctx context.Context, env *serviceTestEnv, prefix string) *model.User {
	t.Helper()
	user, err := env.users.CreateUser(ctx, CreateUserInput{
		Name:     "Test User",
		Email:    testutil.UniqueEmail(prefix),
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	return user
}
