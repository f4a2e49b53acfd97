package auth

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// Create User
func (r *Repository) Create(u *User) error {
	return r.DB.Create(u).Error
}

// ===========================
// Find User By Email
func (r *Repository) FindByEmail(email string) (*User, error) {
	var u User
	if err := r.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ===========================
// Find User By ID
func (r *Repository) FindByID(id uint) (*User, error) {
	var u User
	if err := r.DB.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ===========================
// Update Password Hash (credential rotation is the only mutation)
func (r *Repository) UpdatePasswordHash(id uint, hash string) error {
	return r.DB.Model(&User{}).Where("id = ?", id).Update("password_hash", hash).Error
}
