package repository

import (
	"context"

	"github.com/sige-edu/sige-api/internal/models"
)

// ReportDataSource bundles the read paths exports pull from.
type ReportDataSource struct {
	students   *StudentRepository
	grades     *GradeRepository
	attendance *AttendanceRepository
	finance    *FinanceRepository
}

// NewReportDataSource constructs a ReportDataSource over the listing repositories.
func NewReportDataSource(students *StudentRepository, grades *GradeRepository, attendance *AttendanceRepository, finance *FinanceRepository) *ReportDataSource {
	return &ReportDataSource{students: students, grades: grades, attendance: attendance, finance: finance}
}

func (d *ReportDataSource) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	return d.students.List(ctx, filter)
}

func (d *ReportDataSource) ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	return d.grades.List(ctx, filter)
}

func (d *ReportDataSource) ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return d.attendance.List(ctx, filter)
}

func (d *ReportDataSource) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	return d.finance.ListPayments(ctx, filter)
}
