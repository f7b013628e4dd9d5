package services

import (
	"fmt"
	"strings"
	"time"

	"lms/logger"
	"lms/models"
	"lms/models/course"

	"gorm.io/gorm"
)

// PaymentInput is the writable part of a payment.
type PaymentInput struct {
	UserID      uint
	CategoryID  *uint
	ModuleID    *uint
	Amount      float64
	Description string
	Status      string
	ExpiresAt   *time.Time
}

func (in *PaymentInput) validate() error {
	fields := make(map[string]string)
	if in.UserID == 0 {
		fields["user_id"] = "User is required!"
	}
	if in.Amount < 0 {
		fields["amount"] = "Amount cannot be negative!"
	}
	if in.Status == "" {
		in.Status = models.PaymentPending
	}
	if !models.IsPaymentStatus(in.Status) {
		fields["status"] = "Invalid status"
	}
	if in.ModuleID != nil && in.CategoryID == nil {
		fields["module_id"] = "A module payment needs its category!"
	}
	if len(fields) > 0 {
		return ValidationError("Validation failed!", fields)
	}
	return nil
}

// CreatePayment stores a payment and, when it is created active, grants the course.
func CreatePayment(db *gorm.DB, in PaymentInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := models.Payment{
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
		ModuleID:    in.ModuleID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		ExpiresAt:   in.ExpiresAt,
	}
	return savePayment(db, &p, true)
}

// UpdatePayment replaces the writable fields of a payment.
func UpdatePayment(db *gorm.DB, id uint, in PaymentInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p models.Payment
	if err := db.First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "Payment not found!", "load payment")
	}
	p.UserID = in.UserID
	p.CategoryID = in.CategoryID
	p.ModuleID = in.ModuleID
	p.Amount = in.Amount
	p.Description = strings.TrimSpace(in.Description)
	p.Status = in.Status
	p.ExpiresAt = in.ExpiresAt
	return savePayment(db, &p, false)
}

// UpdatePaymentStatus sets the status. Moving to active grants the course; no other
// transition touches entitlements.
func UpdatePaymentStatus(db *gorm.DB, id uint, status string) (*models.Payment, error) {
	if !models.IsPaymentStatus(status) {
		return nil, FieldError("status", "Invalid status")
	}
	var p models.Payment
	if err := db.First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "Payment not found!", "load payment")
	}
	p.Status = status
	return savePayment(db, &p, false)
}

func savePayment(db *gorm.DB, p *models.Payment, create bool) (*models.Payment, error) {
	var (
		granted  *course.UserCourse
		category *course.Category
		created  bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		paidFor, err := checkPaymentRefs(tx, p)
		if err != nil {
			return err
		}
		if create {
			err = tx.Omit("User").Create(p).Error
		} else {
			err = tx.Omit("User").Save(p).Error
		}
		if err != nil {
			return fmt.Errorf("save payment: %w", err)
		}

		if p.Status != models.PaymentActive || p.CategoryID == nil {
			return nil
		}
		req := GrantRequest{UserID: p.UserID, CategoryID: *p.CategoryID, GrantedBy: course.GrantedByPayment}
		// A flat category already opens every video, so a module payment grants the whole course.
		if p.ModuleID != nil && paidFor.IsModular {
			req.ModuleIDs = []uint{*p.ModuleID}
		}
		granted, category, created, err = ensureEntitlement(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("course granted by payment", "payment_id", p.ID, "user_id", p.UserID, "category_id", granted.CategoryID)
		announceGrant(db, granted, category.Name)
	}
	return p, nil
}

// checkPaymentRefs validates the referenced rows and returns the paid category, if any.
func checkPaymentRefs(tx *gorm.DB, p *models.Payment) (*course.Category, error) {
	if err := mustExist(tx, &models.User{}, p.UserID, "User not found!"); err != nil {
		return nil, err
	}
	if p.CategoryID == nil {
		return nil, nil
	}
	var category course.Category
	if err := tx.Select("id", "is_modular").First(&category, *p.CategoryID).Error; err != nil {
		return nil, notFoundOr(err, "Category not found!", "load category")
	}
	if p.ModuleID != nil {
		var count int64
		if err := tx.Model(&course.Module{}).Where("id = ? AND category_id = ?", *p.ModuleID, *p.CategoryID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check payment module: %w", err)
		}
		if count == 0 {
			return nil, FieldError("module_id", "Module does not belong to this category!")
		}
	}
	return &category, nil
}

// ExpirePayments moves active payments past their expiry to expired. Entitlements are
// left in place.
func ExpirePayments(db *gorm.DB, at time.Time) (int64, error) {
	res := db.Model(&models.Payment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.PaymentActive, at).
		Update("status", models.PaymentExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("expire payments: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PaymentFilter narrows the admin payment list.
type PaymentFilter struct {
	UserID uint
	Status string
}

func ListPayments(db *gorm.DB, f PaymentFilter) ([]models.Payment, error) {
	q := db.Model(&models.Payment{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var items []models.Payment
	err := q.Order("created_at desc, id desc").Find(&items).Error
	return items, err
}
