package services

import (
	"errors"
	"fmt"
	"time"

	"lms/config"
	"lms/models"
	"lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantRequest describes an entitlement to ensure. ModuleIDs are added to the granted
// set of a modular category; they are never removed.
type GrantRequest struct {
	UserID     uint
	CategoryID uint
	GrantedBy  string
	ModuleIDs  []uint
	ExpiresAt  *time.Time
}

// GrantCourse idempotently ensures the entitlement. created is true only for the call
// that inserted the row, and only that call notifies the user.
func GrantCourse(db *gorm.DB, req GrantRequest) (*course.UserCourse, bool, error) {
	var (
		uc       *course.UserCourse
		category *course.Category
		created  bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		uc, category, created, err = ensureEntitlement(tx, req)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		announceGrant(db, uc, category.Name)
	}
	return uc, created, nil
}

func ensureEntitlement(tx *gorm.DB, req GrantRequest) (*course.UserCourse, *course.Category, bool, error) {
	if req.GrantedBy == "" {
		req.GrantedBy = course.GrantedByGift
	}
	if req.GrantedBy != course.GrantedByGift && req.GrantedBy != course.GrantedByPayment {
		return nil, nil, false, FieldError("granted_by", "granted_by must be payment or gift!")
	}

	var user models.User
	if err := tx.Select("id").First(&user, req.UserID).Error; err != nil {
		return nil, nil, false, notFoundOr(err, "User not found!", "load user")
	}
	var category course.Category
	if err := tx.First(&category, req.CategoryID).Error; err != nil {
		return nil, nil, false, notFoundOr(err, "Category not found!", "load category")
	}

	modules, err := loadGrantModules(tx, &category, req.ModuleIDs)
	if err != nil {
		return nil, nil, false, err
	}

	uc := course.UserCourse{
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
		GrantedBy:  req.GrantedBy,
		ExpiresAt:  req.ExpiresAt,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
		DoNothing: true,
	}).Omit("Modules").Create(&uc)
	if res.Error != nil {
		return nil, nil, false, fmt.Errorf("create user course: %w", res.Error)
	}
	created := res.RowsAffected == 1

	if !created {
		uc = course.UserCourse{}
		if err := tx.Where("user_id = ? AND category_id = ?", req.UserID, req.CategoryID).First(&uc).Error; err != nil {
			return nil, nil, false, fmt.Errorf("load user course: %w", err)
		}
	}

	if len(modules) > 0 {
		if err := tx.Model(&uc).Association("Modules").Append(modules); err != nil {
			return nil, nil, false, fmt.Errorf("grant modules: %w", err)
		}
	}

	if err := tx.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order, id")
	}).First(&uc, uc.ID).Error; err != nil {
		return nil, nil, false, fmt.Errorf("reload user course: %w", err)
	}
	return &uc, &category, created, nil
}

// UpdateEntitlement replaces the expiry and adds moduleIDs to the granted set. Either
// both changes are stored or neither is.
func UpdateEntitlement(db *gorm.DB, id uint, moduleIDs []uint, expiresAt *time.Time) (*course.UserCourse, error) {
	var updated *course.UserCourse
	err := db.Transaction(func(tx *gorm.DB) error {
		var uc course.UserCourse
		if err := tx.First(&uc, id).Error; err != nil {
			return notFoundOr(err, "User course not found!", "load user course")
		}
		if err := tx.Model(&uc).Update("expires_at", expiresAt).Error; err != nil {
			return fmt.Errorf("update expiry: %w", err)
		}
		var err error
		updated, _, _, err = ensureEntitlement(tx, GrantRequest{
			UserID:     uc.UserID,
			CategoryID: uc.CategoryID,
			GrantedBy:  uc.GrantedBy,
			ModuleIDs:  moduleIDs,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// loadGrantModules checks every id belongs to the (modular) category.
func loadGrantModules(tx *gorm.DB, category *course.Category, ids []uint) ([]course.Module, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	if !category.IsModular {
		return nil, FieldError("module_ids", "Category is not modular!")
	}
	var modules []course.Module
	if err := tx.Where("id IN ? AND category_id = ?", ids, category.ID).Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	if len(modules) != len(ids) {
		return nil, FieldError("module_ids", "Some modules do not belong to this category!")
	}
	return modules, nil
}

func announceGrant(db *gorm.DB, uc *course.UserCourse, categoryName string) {
	var title, message string
	if uc.GrantedBy == course.GrantedByPayment {
		title = "Your course is now open! ✅"
		message = fmt.Sprintf("Payment confirmed. The '%s' course is now available to you.", categoryName)
	} else {
		title = "You have been gifted a new course! 🎁"
		message = fmt.Sprintf("Congratulations! The '%s' course has been gifted to you. You can now watch all of its video lessons.", categoryName)
	}
	notifySafely(db, uc.UserID, title, message, models.NotificationCourse)
	mailUser(db, uc.UserID, title, "<p>"+message+"</p>")
}

// HasAccess decides whether the user may watch the video. A non-modular category, or a
// video outside any module, only needs the entitlement row; otherwise the video's module
// must be in the granted set.
func HasAccess(db *gorm.DB, userID uint, video *course.Video) (bool, error) {
	category := video.Category
	if category == nil {
		category = &course.Category{}
		if err := db.Select("id", "is_modular").First(category, video.CategoryID).Error; err != nil {
			return false, notFoundOr(err, "Category not found!", "load category")
		}
	}

	var uc course.UserCourse
	err := db.Preload("Modules").
		Where("user_id = ? AND category_id = ?", userID, video.CategoryID).
		First(&uc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user course: %w", err)
	}

	if config.AppConfig.EnforceCourseExpiry && uc.Expired(time.Now()) {
		return false, nil
	}
	if !category.IsModular || video.ModuleID == nil {
		return true, nil
	}
	return uc.HasModule(*video.ModuleID), nil
}

// MyCourses lists the user's entitlements with their granted modules.
func MyCourses(db *gorm.DB, userID uint) ([]course.UserCourse, error) {
	var items []course.UserCourse
	err := db.Preload("Modules").Preload("Category").
		Where("user_id = ?", userID).
		Order("granted_at desc").
		Find(&items).Error
	return items, err
}

func uniqueIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
