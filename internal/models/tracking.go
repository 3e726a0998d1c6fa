package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance values for the weekly group meeting.
const (
	AttendancePresent = "PRESENT"
	AttendanceAbsent  = "ABSENT"
	AttendanceExcused = "EXCUSED"
)

// WeeklyTracking is one beneficiary's weekly business tracking record.
type WeeklyTracking struct {
	gorm.Model

	RecordID         string    `json:"record_id" gorm:"uniqueIndex;type:varchar(50)"`
	BeneficiaryID    string    `json:"beneficiary_id" gorm:"index;type:varchar(50)"`
	WeekEnding       time.Time `json:"week_ending" gorm:"index"`
	IncomeThisWeek   float64   `json:"income_this_week"`
	ExpensesThisWeek float64   `json:"expenses_this_week"`
	CurrentCapital   float64   `json:"current_capital"`
	Attendance       string    `json:"attendance" gorm:"type:varchar(10)"`
	Notes            string    `json:"notes"`
	Challenges       string    `json:"challenges"`
	SubmittedBy      string    `json:"submitted_by" gorm:"type:varchar(50)"`
	SubmitterRole    string    `json:"submitter_role" gorm:"type:varchar(20)"`
}

func (w *WeeklyTracking) BeforeCreate(tx *gorm.DB) error {
	if w.RecordID == "" {
		w.RecordID = "TRK-" + uuid.NewString()
	}
	return nil
}
