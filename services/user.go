package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lms/config"
	"lms/logger"
	"lms/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

var ErrInvalidCredentials = Unauthorized("Invalid credentials!")

type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Role      string
}

// Register creates a user with a hashed password and a fresh watermark id.
func Register(db *gorm.DB, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	var existing int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing > 0 {
		return nil, Conflict("A user with that username already exists.")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	user := models.User{
		Username:  username,
		Password:  hash,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
	}

	// Watermark ids are short, so a collision is retried with a new one.
	for attempt := 0; attempt < 5; attempt++ {
		wm := NewWatermarkID()
		user.WatermarkID = &wm
		err = db.Create(&user).Error
		if err == nil {
			logger.Info("user registered", "user_id", user.ID, "role", user.Role)
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		var taken int64
		if err := db.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken > 0 {
			return nil, Conflict("A user with that username already exists.")
		}
		user.ID = 0
	}
	return nil, fmt.Errorf("create user: %w", err)
}

// NewWatermarkID returns 8 upper-case hex characters.
func NewWatermarkID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func HashPassword(password string) (string, error) {
	cost := config.AppConfig.SaltRound
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate checks the credentials at time at. MaxFailedLogins consecutive failures
// lock the account for LockoutDuration.
func Authenticate(db *gorm.DB, username, password string, at time.Time) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if user.LockedUntil != nil && user.LockedUntil.After(at) {
		return nil, Unauthorized("Your account is temporarily locked. Try again later.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= MaxFailedLogins {
			until := at.Add(LockoutDuration)
			updates["failed_login_attempts"] = 0
			updates["locked_until"] = &until
			logger.Warn("account locked after failed logins", "user_id", user.ID)
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			logger.Error("saving failed login", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if user.IsBlocked {
		return nil, Forbidden("Your account has been blocked!")
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &at
	if err := db.Model(&user).Select("failed_login_attempts", "locked_until", "last_login").Updates(&user).Error; err != nil {
		logger.Error("saving last login", "user_id", user.ID, "error", err)
	}
	return &user, nil
}

func ChangePassword(db *gorm.DB, userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return notFoundOr(err, "User not found!", "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return FieldError("old_password", "Old password is incorrect!")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("password", hash).Error
}

type UserFilter struct {
	Role   string
	Search string
	Offset int
	Limit  int
}

// ListUsers returns a page of users and the total matching count.
func ListUsers(db *gorm.DB, f UserFilter) ([]models.User, int64, error) {
	q := db.Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Order("id desc").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func GetUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User not found!", "load user")
	}
	return &user, nil
}

// UserPatch holds admin edits; nil fields are left unchanged.
type UserPatch struct {
	Email     *string
	Phone     *string
	FirstName *string
	LastName  *string
	Role      *string
	Avatar    *string
}

func UpdateUser(db *gorm.DB, id uint, patch UserPatch) (*models.User, error) {
	user, err := GetUser(db, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	set("email", patch.Email)
	set("phone", patch.Phone)
	set("first_name", patch.FirstName)
	set("last_name", patch.LastName)
	set("avatar", patch.Avatar)
	if patch.Role != nil {
		if *patch.Role != models.RoleAdmin && *patch.Role != models.RoleStudent {
			return nil, FieldError("role", "Role must be admin or student!")
		}
		updates["role"] = *patch.Role
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return GetUser(db, id)
}

// SetBlocked blocks or unblocks a user. Blocked users cannot log in, use their token or
// receive broadcasts.
func SetBlocked(db *gorm.DB, id uint, blocked bool) (*models.User, error) {
	res := db.Model(&models.User{}).Where("id = ?", id).Update("is_blocked", blocked)
	if res.Error != nil {
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := GetUser(db, id); err != nil {
			return nil, err
		}
	}
	return GetUser(db, id)
}

func DeleteUser(db *gorm.DB, id uint) error {
	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("User not found!")
	}
	return nil
}
