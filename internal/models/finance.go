package models

import "time"

// PaymentStatus tracks the lifecycle of a student payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusOverdue   PaymentStatus = "OVERDUE"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// PaymentPlan defines a recurring charge attached to a course.
type PaymentPlan struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	CourseID     *string   `db:"course_id" json:"course_id,omitempty"`
	Name         string    `db:"name" json:"name"`
	Amount       float64   `db:"amount" json:"amount"`
	Installments int       `db:"installments" json:"installments"`
	DueDay       int       `db:"due_day" json:"due_day"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentPayment is one installment charged to a student.
type StudentPayment struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	PlanID      *string       `db:"plan_id" json:"plan_id,omitempty"`
	Description string        `db:"description" json:"description"`
	Amount      float64       `db:"amount" json:"amount"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	PaidAt      *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	PaidAmount  *float64      `db:"paid_amount" json:"paid_amount,omitempty"`
	Status      PaymentStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentDetail joins a payment with the student name.
type PaymentDetail struct {
	StudentPayment
	StudentName string `db:"student_name" json:"student_name"`
}

// PaymentFilter defines filter criteria for listing payments.
type PaymentFilter struct {
	StudentID string
	Status    *PaymentStatus
	DueFrom   *time.Time
	DueTo     *time.Time
	Page      int
	PageSize  int
}

// FinanceSummary aggregates payment totals for the finance overview.
type FinanceSummary struct {
	TotalBilled   float64 `db:"total_billed" json:"total_billed"`
	TotalReceived float64 `db:"total_received" json:"total_received"`
	TotalPending  float64 `db:"total_pending" json:"total_pending"`
	TotalOverdue  float64 `db:"total_overdue" json:"total_overdue"`
	OverdueCount  int     `db:"overdue_count" json:"overdue_count"`
}
