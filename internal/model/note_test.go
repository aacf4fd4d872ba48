package model

import (
	"reflect"
	"testing"
)

func TestDedupeTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"work", "urgent"}, []string{"work", "urgent"}},
		{"duplicates removed", []string{"work", "urgent", "work"}, []string{"work", "urgent"}},
		{"order preserved", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupeTags(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNotePatch_Apply(t *testing.T) {
	title := "new title"
	content := "new content"

	note := &Note{Title: "old", Content: "old content", MemoDate: "20240101"}
	patch := NotePatch{Title: &title, Content: &content}
	patch.Apply(note)

	if note.Title != title {
		t.Errorf("Title = %q, want %q", note.Title, title)
	}
	if note.Content != content {
		t.Errorf("Content = %q, want %q", note.Content, content)
	}
	if note.MemoDate != "20240101" {
		t.Errorf("MemoDate should be unchanged, got %q", note.MemoDate)
	}
}

func TestNotePatch_IsEmpty(t *testing.T) {
	if !(NotePatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}

	tags := []string{"work"}
	if (NotePatch{Tags: &tags}).IsEmpty() {
		t.Error("patch with tags should not be empty")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	name := "Renamed"
	inactive := false
	password := "ignored-by-apply"

	user := &User{Name: "Original", Email: "a@example.com", IsActive: true}
	patch := UserPatch{Name: &name, IsActive: &inactive, Password: &password}
	patch.Apply(user)

	if user.Name != name {
		t.Errorf("Name = %q, want %q", user.Name, name)
	}
	if user.Email != "a@example.com" {
		t.Errorf("Email should be unchanged, got %q", user.Email)
	}
	if user.IsActive {
		t.Error("IsActive should be false")
	}
	// Apply never touches the hash; re-hashing is the service's job.
	if user.PasswordHash != "" {
		t.Errorf("PasswordHash should be unchanged, got %q", user.PasswordHash)
	}
}

func TestRole_IsValid(t *testing.T) {
	if !RoleAdmin.IsValid() || !RoleUser.IsValid() {
		t.Error("known roles should be valid")
	}
	if Role("superuser").IsValid() {
		t.Error("unknown role should be invalid")
	}
}
