package directory

import "context"

// User is an application profile stored in the directory. The identity
// provider owns the credentials; the directory owns profile and role. ID is
// the opaque provider uid and never changes.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName,omitempty"`
}

// Update carries a partial profile change. Nil fields are left untouched.
type Update struct {
	Name     *string
	Email    *string
	Role     *Role
	FullName *string
}

// Store is the persistence contract for user profiles.
type Store interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, id string, upd Update) (User, error)
	Delete(ctx context.Context, id string) error
}
