package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. The USSD engine serves beneficiaries only; the other roles
// use the web surface.
const (
	RoleBeneficiary = "beneficiary"
	RoleCaseworker  = "caseworker"
	RoleAdmin       = "admin"
)

// Supported languages.
const (
	LanguageEnglish = "en"
	LanguageSwahili = "sw"
)

// User represents any registered person in the system.
type User struct {
	gorm.Model

	UserID      string `json:"user_id" gorm:"uniqueIndex;type:varchar(50)"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number" gorm:"uniqueIndex;type:varchar(20)"`
	Role        string `json:"role" gorm:"index;type:varchar(20)"`
	Language    string `json:"language" gorm:"type:varchar(5);default:en"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
}

// BeforeCreate generates the UserID and normalizes the phone number.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = "USR-" + uuid.NewString()
	}
	u.PhoneNumber = NormalizePhone(u.PhoneNumber)
	if u.Language == "" {
		u.Language = LanguageEnglish
	}
	return nil
}

// NormalizePhone rewrites a Kenyan mobile number to +2547XXXXXXXX form.
// Inputs that do not look Kenyan are returned trimmed but otherwise as-is.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	switch {
	case strings.HasPrefix(p, "+254"):
		return p
	case strings.HasPrefix(p, "254"):
		return "+" + p
	case strings.HasPrefix(p, "07") && len(p) == 10:
		return "+254" + p[1:]
	default:
		return p
	}
}
