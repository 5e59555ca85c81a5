package directory

import (
	"context"
	"fmt"
	"strings"
)

// Service applies validation and the role-authorization rules in front of a
// Store. Mutating calls take the acting user explicitly; there is no ambient
// current-user state.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	return &Service{store: store}, nil
}

// List returns every profile in the directory.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// GetByID looks up a profile by provider uid.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.GetByID(ctx, id)
}

// GetByEmail looks up a profile by its unique email.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	return s.store.GetByEmail(ctx, email)
}

// Create registers a new profile. Only Admin and SuperAdmin actors may create
// accounts, and the email must not be in use.
func (s *Service) Create(ctx context.Context, actor User, u User) (User, error) {
	if !CanCreate(actor.Role) {
		return User{}, fmt.Errorf("%w: only administrators may create accounts", ErrNotAllowed)
	}
	u.ID = strings.TrimSpace(u.ID)
	u.Name = strings.TrimSpace(u.Name)
	if u.ID == "" || u.Name == "" {
		return User{}, fmt.Errorf("%w: id and name are required", ErrInvalidInput)
	}
	email, err := normalizeEmail(u.Email)
	if err != nil {
		return User{}, err
	}
	u.Email = email
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Role.Level() == 0 {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, u.Role)
	}
	if actor.Role == RoleAdmin && u.Role != RoleUser {
		return User{}, fmt.Errorf("%w: cannot assign that role", ErrNotAllowed)
	}
	if err := s.store.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Update applies a partial change to target under the edit rules.
func (s *Service) Update(ctx context.Context, actor User, targetID string, upd Update) (User, error) {
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return User{}, err
	}
	if !CanEdit(actor, target) {
		return User{}, fmt.Errorf("%w: cannot edit this account", ErrNotAllowed)
	}
	if upd.Role != nil {
		if upd.Role.Level() == 0 {
			return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *upd.Role)
		}
		if !CanChangeRole(actor, target, *upd.Role) {
			return User{}, fmt.Errorf("%w: cannot assign that role", ErrNotAllowed)
		}
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return User{}, err
		}
		upd.Email = &email
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	return s.store.Update(ctx, target.ID, upd)
}

// Delete removes target under the delete matrix.
func (s *Service) Delete(ctx context.Context, actor User, targetID string) error {
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !CanDelete(actor, target) {
		return fmt.Errorf("%w: cannot delete this account", ErrNotAllowed)
	}
	return s.store.Delete(ctx, target.ID)
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}
