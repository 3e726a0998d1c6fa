package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmergencyContact is a person to reach when a beneficiary cannot be.
type EmergencyContact struct {
	gorm.Model

	ContactID     string `json:"contact_id" gorm:"uniqueIndex;type:varchar(50)"`
	BeneficiaryID string `json:"beneficiary_id" gorm:"index;type:varchar(50)"`
	Name          string `json:"name"`
	Phone         string `json:"phone" gorm:"type:varchar(20)"`
	Relationship  string `json:"relationship" gorm:"type:varchar(30)"`
	Address       string `json:"address"`
	IsPrimary     bool   `json:"is_primary" gorm:"default:false"`
	CreatedVia    string `json:"created_via" gorm:"type:varchar(10)"`
}

func (c *EmergencyContact) BeforeCreate(tx *gorm.DB) error {
	if c.ContactID == "" {
		c.ContactID = "CNT-" + uuid.NewString()
	}
	c.Phone = NormalizePhone(c.Phone)
	return nil
}
