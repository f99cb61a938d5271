package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyName   = errors.New("user name cannot be empty")
	ErrNameTooLong = errors.New("user name is too long (max 100 characters)")
)

const MaxNameLength = 100

// User is referenced by balances, coupon histories and orders. Only its
// existence matters to the ledger; profile management lives elsewhere.
type User struct {
	id        int64
	name      string
	createdAt time.Time
}

func NewUser(name string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	return &User{name: name, createdAt: now}, nil
}

func Reconstruct(id int64, name string, createdAt time.Time) *User {
	return &User{id: id, name: name, createdAt: createdAt}
}

func (u *User) ID() int64            { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// AssignID is called by repositories once the row has been inserted.
func (u *User) AssignID(id int64) { u.id = id }
