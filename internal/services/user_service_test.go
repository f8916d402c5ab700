package services

import (
	"testing"

	"gorm.io/gorm"

	"procurement_tracker/internal/models"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.users[user.Username] = user
	return nil
}

func TestVerifyManagerPIN(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	manager := &models.User{Username: "boss", Role: models.Manager, IsActive: true}
	if err := svc.CreateUser(manager, "1234"); err != nil {
		t.Fatalf("create manager: %v", err)
	}
	staff := &models.User{Username: "clerk", Role: models.Staff, IsActive: true}
	if err := svc.CreateUser(staff, "1234"); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	ok, err := svc.VerifyManagerPIN("boss", "1234")
	if err != nil || !ok {
		t.Fatalf("manager with correct PIN: ok=%v err=%v", ok, err)
	}
	if _, err := svc.VerifyManagerPIN("boss", "9999"); err == nil {
		t.Fatalf("wrong PIN must be rejected")
	}
	ok, err = svc.VerifyManagerPIN("clerk", "1234")
	if err != nil || ok {
		t.Fatalf("staff role must not grant manager mode: ok=%v err=%v", ok, err)
	}
	if _, err := svc.VerifyManagerPIN("nobody", "1234"); err == nil {
		t.Fatalf("unknown user must error")
	}
}
