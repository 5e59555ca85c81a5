package directory

import (
	"context"
	"errors"
	"testing"
)

func newTestService(t *testing.T, seed ...User) *Service {
	t.Helper()
	store := NewInMemory()
	for _, u := range seed {
		if err := store.Create(context.Background(), u); err != nil {
			t.Fatalf("seed %s: %v", u.ID, err)
		}
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateRequiresPrivilege(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), user("plain", RoleUser), user("new", RoleUser))
	if !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	created, err := svc.Create(context.Background(), user("boss", RoleAdmin), user("new", RoleUser))
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if created.Role != RoleUser {
		t.Fatalf("unexpected role: %s", created.Role)
	}
}

func TestCreateEmailUniqueness(t *testing.T) {
	svc := newTestService(t, user("existing", RoleUser))
	admin := user("boss", RoleSuperAdmin)

	dup := User{ID: "second", Name: "Second", Email: "existing@example.com"}
	if _, err := svc.Create(context.Background(), admin, dup); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}

	// The failed create must not have mutated the directory.
	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("directory mutated by failed create: %d users", len(users))
	}
	if _, err := svc.GetByID(context.Background(), "second"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected phantom user to be absent, got %v", err)
	}
}

func TestUpdateEmailUniqueness(t *testing.T) {
	svc := newTestService(t, user("one", RoleUser), user("two", RoleUser))
	admin := user("boss", RoleAdmin)

	email := "one@example.com"
	if _, err := svc.Update(context.Background(), admin, "two", Update{Email: &email}); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}

	fresh := "fresh@example.com"
	updated, err := svc.Update(context.Background(), admin, "two", Update{Email: &fresh})
	if err != nil {
		t.Fatalf("update with fresh email: %v", err)
	}
	if updated.Email != fresh {
		t.Fatalf("email not updated: %s", updated.Email)
	}
}

func TestUpdateHonorsEditRules(t *testing.T) {
	svc := newTestService(t, user("admin-b", RoleAdmin), user("plain", RoleUser))
	adminA := user("admin-a", RoleAdmin)

	name := "Renamed"
	if _, err := svc.Update(context.Background(), adminA, "admin-b", Update{Name: &name}); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("admin editing another admin: expected ErrNotAllowed, got %v", err)
	}
	if _, err := svc.Update(context.Background(), adminA, "plain", Update{Name: &name}); err != nil {
		t.Fatalf("admin editing plain user: %v", err)
	}

	// A plain user may not change their own role.
	self, err := svc.GetByID(context.Background(), "plain")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	escalate := RoleAdmin
	if _, err := svc.Update(context.Background(), self, "plain", Update{Role: &escalate}); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("self role escalation: expected ErrNotAllowed, got %v", err)
	}
}

func TestDeleteMatrixThroughService(t *testing.T) {
	svc := newTestService(t, user("admin-b", RoleAdmin), user("root", RoleSuperAdmin), user("plain", RoleUser))
	adminA := user("admin-a", RoleAdmin)
	root := user("root", RoleSuperAdmin)

	if err := svc.Delete(context.Background(), adminA, "admin-b"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("admin deleting admin: expected ErrNotAllowed, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminA, "root"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("deleting superadmin: expected ErrNotAllowed, got %v", err)
	}
	if err := svc.Delete(context.Background(), root, "root"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("self delete: expected ErrNotAllowed, got %v", err)
	}

	if err := svc.Delete(context.Background(), root, "admin-b"); err != nil {
		t.Fatalf("superadmin deleting admin: %v", err)
	}
	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, u := range users {
		if u.ID == "admin-b" {
			t.Fatal("deleted admin still listed")
		}
	}

	if err := svc.Delete(context.Background(), adminA, "plain"); err != nil {
		t.Fatalf("admin deleting user: %v", err)
	}
	if err := svc.Delete(context.Background(), root, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting missing user: expected ErrNotFound, got %v", err)
	}
}
