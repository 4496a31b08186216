package dto

// CreatePaymentPlanRequest captures POST /finance/plans payload.
type CreatePaymentPlanRequest struct {
	SchoolID     string  `json:"schoolId" validate:"required,uuid"`
	CourseID     *string `json:"courseId,omitempty" validate:"omitempty,uuid"`
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Installments int     `json:"installments" validate:"required,min=1,max=48"`
	DueDay       int     `json:"dueDay" validate:"required,min=1,max=28"`
}

// CreatePaymentRequest captures POST /finance/payments payload for a
// one-off charge.
type CreatePaymentRequest struct {
	StudentID   string  `json:"studentId" validate:"required,uuid"`
	PlanID      *string `json:"planId,omitempty" validate:"omitempty,uuid"`
	Description string  `json:"description" validate:"required,min=2,max=200"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	DueDate     string  `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

// SettlePaymentRequest captures POST /finance/payments/:id/pay payload.
type SettlePaymentRequest struct {
	PaidAmount float64 `json:"paidAmount" validate:"required,gt=0"`
	PaidAt     *string `json:"paidAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
