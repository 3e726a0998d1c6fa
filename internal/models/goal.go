package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal types offered in the create-goal flow.
const (
	GoalTypeBusiness  = "business"
	GoalTypeEducation = "education"
	GoalTypeSavings   = "savings"
	GoalTypeOther     = "other"
)

// Goal is a beneficiary's savings or business goal.
type Goal struct {
	gorm.Model

	GoalID        string    `json:"goal_id" gorm:"uniqueIndex;type:varchar(50)"`
	BeneficiaryID string    `json:"beneficiary_id" gorm:"index;type:varchar(50)"`
	GoalType      string    `json:"goal_type" gorm:"type:varchar(20)"`
	Description   string    `json:"description"`
	TargetAmount  float64   `json:"target_amount"`
	TargetDate    time.Time `json:"target_date"`
	Status        string    `json:"status" gorm:"type:varchar(20);default:active"`
	CreatedVia    string    `json:"created_via" gorm:"type:varchar(10)"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.GoalID == "" {
		g.GoalID = "GOL-" + uuid.NewString()
	}
	if g.Status == "" {
		g.Status = "active"
	}
	return nil
}
