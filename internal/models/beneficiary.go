package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Beneficiary links a user to their program enrollment. The USSD engine
// needs only the id mapping; the rest belongs to the case-management
// surface.
type Beneficiary struct {
	gorm.Model

	BeneficiaryID string `json:"beneficiary_id" gorm:"uniqueIndex;type:varchar(50)"`
	UserID        string `json:"user_id" gorm:"uniqueIndex;type:varchar(50)"`
	ProgramID     string `json:"program_id" gorm:"index;type:varchar(50)"`
	GroupName     string `json:"group_name"`
	IsActive      bool   `json:"is_active" gorm:"default:true"`
}

func (b *Beneficiary) BeforeCreate(tx *gorm.DB) error {
	if b.BeneficiaryID == "" {
		b.BeneficiaryID = "BEN-" + uuid.NewString()
	}
	return nil
}
