package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/auth"
	"jinstore-backend/models"
)

const (
	minPasswordLen = 8
	updateAttempts = 3
)

type Service struct {
	repo        UserRepo
	adminEmails map[string]struct{}
	now         func() time.Time
}

// NewService promotes registrations from adminEmails to the admin role.
func NewService(repo UserRepo, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{repo: repo, adminEmails: admins, now: time.Now}
}

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type UserPage struct {
	Items []models.User `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, models.InvalidInput("malformed user id %q", id)
	}
	return oid, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" {
		return models.User{}, models.InvalidInput("username is required")
	}
	if !validEmail(email) {
		return models.User{}, models.InvalidInput("email is not valid")
	}
	if len(in.Password) < minPasswordLen {
		return models.User{}, models.InvalidInput("password must be at least %d characters", minPasswordLen)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, s.newUser(username, email, hash, ""))
}

// Authenticate checks email and password. Unknown email and wrong password
// look the same to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, fmt.Errorf("%w: wrong email or password", models.ErrUnauthorized)
	}
	if err != nil {
		return models.User{}, err
	}
	if u.PasswordHash == "" || !auth.CheckPassword(u.PasswordHash, password) {
		return models.User{}, fmt.Errorf("%w: wrong email or password", models.ErrUnauthorized)
	}
	return u, nil
}

// LoginWithFirebase finds the user by Firebase uid, then by email (linking
// the uid), and creates one when neither exists. An address Firebase has not
// verified is only good for an account already linked to that uid.
func (s *Service) LoginWithFirebase(ctx context.Context, id auth.Identity) (models.User, error) {
	u, err := s.repo.GetByFirebaseUID(ctx, id.UID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, err
	}
	if !id.EmailVerified {
		return models.User{}, fmt.Errorf("%w: firebase email is not verified", models.ErrUnauthorized)
	}

	email := normalizeEmail(id.Email)
	u, err = s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.modify(ctx, u.ID, func(u *models.User) error {
			u.FirebaseUID = id.UID
			return nil
		})
	case errors.Is(err, models.ErrNotFound):
		username := strings.TrimSpace(id.Name)
		if username == "" {
			username = strings.SplitN(email, "@", 2)[0]
		}
		return s.repo.Create(ctx, s.newUser(username, email, "", id.UID))
	default:
		return models.User{}, err
	}
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (models.User, error) {
	var name, email string
	if in.Username != nil {
		if name = strings.TrimSpace(*in.Username); name == "" {
			return models.User{}, models.InvalidInput("username cannot be empty")
		}
	}
	if in.Email != nil {
		if email = normalizeEmail(*in.Email); !validEmail(email) {
			return models.User{}, models.InvalidInput("email is not valid")
		}
	}
	return s.modify(ctx, id, func(u *models.User) error {
		if name != "" {
			u.Username = name
		}
		if email != "" {
			u.Email = email
		}
		return nil
	})
}

// AddAddress appends an address; the first one becomes primary.
func (s *Service) AddAddress(ctx context.Context, id primitive.ObjectID, a models.Address) (models.User, error) {
	return s.modify(ctx, id, func(u *models.User) error {
		u.Addresses = append(u.Addresses, a)
		if u.PrimaryAddressIndex < 0 || u.PrimaryAddressIndex >= len(u.Addresses) {
			u.PrimaryAddressIndex = 0
		}
		return nil
	})
}

func (s *Service) UpdateAddress(ctx context.Context, id primitive.ObjectID, index int, a models.Address) (models.User, error) {
	return s.modify(ctx, id, func(u *models.User) error {
		if err := checkIndex(*u, index); err != nil {
			return err
		}
		u.Addresses[index] = a
		return nil
	})
}

// RemoveAddress keeps the primary pointing at the same address when it
// survives; removing the primary itself falls back to the first address.
func (s *Service) RemoveAddress(ctx context.Context, id primitive.ObjectID, index int) (models.User, error) {
	return s.modify(ctx, id, func(u *models.User) error {
		if err := checkIndex(*u, index); err != nil {
			return err
		}
		u.Addresses = append(u.Addresses[:index], u.Addresses[index+1:]...)

		switch {
		case len(u.Addresses) == 0:
			u.PrimaryAddressIndex = -1
		case index == u.PrimaryAddressIndex:
			u.PrimaryAddressIndex = 0
		case index < u.PrimaryAddressIndex:
			u.PrimaryAddressIndex--
		}
		return nil
	})
}

func (s *Service) SetPrimaryAddress(ctx context.Context, id primitive.ObjectID, index int) (models.User, error) {
	return s.modify(ctx, id, func(u *models.User) error {
		if err := checkIndex(*u, index); err != nil {
			return err
		}
		u.PrimaryAddressIndex = index
		return nil
	})
}

func (s *Service) List(ctx context.Context, page models.Page) (UserPage, error) {
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return UserPage{}, err
	}
	if items == nil {
		items = []models.User{}
	}
	return UserPage{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (s *Service) SetRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return models.User{}, err
	}
	if !role.Valid() {
		return models.User{}, models.InvalidInput("unknown role %q", role)
	}
	return s.modify(ctx, oid, func(u *models.User) error {
		u.Role = role
		return nil
	})
}

func (s *Service) newUser(username, email, hash, firebaseUID string) models.User {
	role := models.RoleCustomer
	if _, ok := s.adminEmails[email]; ok {
		role = models.RoleAdmin
	}
	now := s.now().UTC()
	return models.User{
		Username:            username,
		Email:               email,
		PasswordHash:        hash,
		FirebaseUID:         firebaseUID,
		Role:                role,
		Addresses:           []models.Address{},
		PrimaryAddressIndex: -1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// modify applies fn to a fresh copy of the user and writes it back. When
// another writer got there first the user is read again and fn reapplied.
func (s *Service) modify(ctx context.Context, id primitive.ObjectID, fn func(*models.User) error) (models.User, error) {
	var err error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		var u models.User
		if u, err = s.repo.Get(ctx, id); err != nil {
			return models.User{}, err
		}
		if err = fn(&u); err != nil {
			return models.User{}, err
		}
		u.UpdatedAt = s.now().UTC()
		u, err = s.repo.Update(ctx, u)
		if !errors.Is(err, models.ErrStale) {
			return u, err
		}
	}
	return models.User{}, err
}

func checkIndex(u models.User, index int) error {
	if index < 0 || index >= len(u.Addresses) {
		return fmt.Errorf("address %d: %w", index, models.ErrNotFound)
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func validEmail(e string) bool {
	if e == "" {
		return false
	}
	addr, err := mail.ParseAddress(e)
	return err == nil && addr.Address == e
}
