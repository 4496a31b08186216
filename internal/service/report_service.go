package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
	"github.com/sige-edu/sige-api/pkg/export"
	"github.com/sige-edu/sige-api/pkg/jobs"
)

// reportExportLimit caps the rows pulled into a single export file.
const reportExportLimit = 100

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	ListByRequester(ctx context.Context, userID string, limit int) ([]models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type reportDataSource interface {
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
	ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
}

type reportEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type reportStore interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type reportSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string) (jobID, relPath string, expiresAt time.Time, err error)
}

type reportMetrics interface {
	RecordReportJob(reportType, outcome string)
}

// reportParams is the serialized filter stored with a job.
type reportParams struct {
	SchoolID string `json:"school_id,omitempty"`
	ClassID  string `json:"class_id,omitempty"`
}

// ReportService coordinates asynchronous export jobs: it records the
// request, hands it to the worker queue, renders the file, and serves
// signed downloads.
type ReportService struct {
	repo      reportRepository
	data      reportDataSource
	queue     reportEnqueuer
	store     reportStore
	signer    reportSigner
	metrics   reportMetrics
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService. The queue is attached
// later via SetQueue because the queue handler needs the service.
func NewReportService(repo reportRepository, data reportDataSource, store reportStore, signer reportSigner, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		data:      data,
		store:     store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validator.New(),
		logger:    logger,
	}
}

// SetQueue wires the worker queue used for job dispatch.
func (s *ReportService) SetQueue(queue reportEnqueuer) {
	s.queue = queue
}

// SetMetrics attaches an optional job outcome recorder.
func (s *ReportService) SetMetrics(metrics reportMetrics) {
	s.metrics = metrics
}

func (s *ReportService) recordOutcome(reportType models.ReportType, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordReportJob(string(reportType), outcome)
	}
}

// Generate validates the request, persists a pending job and enqueues it.
func (s *ReportService) Generate(ctx context.Context, requestedBy string, req dto.GenerateReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}

	params := reportParams{}
	if req.SchoolID != nil {
		params.SchoolID = *req.SchoolID
	}
	if req.ClassID != nil {
		params.ClassID = *req.ClassID
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode report params")
	}

	job := &models.ReportJob{
		Type:        req.Type,
		Format:      req.Format,
		Params:      string(raw),
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report worker unavailable")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type), Payload: job.ID}); err != nil {
		s.logger.Error("failed to enqueue report job", zap.String("job_id", job.ID), zap.Error(err))
		if markErr := s.repo.MarkFailed(ctx, job.ID, "queue unavailable"); markErr != nil {
			s.logger.Error("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// Status returns the current state of a job, with a signed download URL
// once it has completed. Requesters only see their own jobs; admins see
// all of them.
func (s *ReportService) Status(ctx context.Context, userID string, role models.UserRole, jobID string) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.RequestedBy != userID && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report job belongs to another user")
	}

	response := &dto.ReportStatusResponse{ID: job.ID, Status: job.Status, Error: job.Error}
	if job.Status == models.ReportJobCompleted && job.FilePath != nil {
		token, _, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		url := "/reports/download?token=" + token
		response.DownloadURL = &url
	}
	return response, nil
}

// ListJobs returns the requester's recent jobs.
func (s *ReportService) ListJobs(ctx context.Context, userID string, limit int) ([]models.ReportJob, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	jobList, err := s.repo.ListByRequester(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report jobs")
	}
	return jobList, nil
}

// ResolveDownload validates a signed token and returns the absolute file
// path plus a suggested download name.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (path, filename string, err error) {
	jobID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportJobCompleted || job.FilePath == nil || *job.FilePath != relPath {
		return "", "", appErrors.Clone(appErrors.ErrNotFound, "report file not available")
	}
	return s.store.Path(relPath), downloadName(job), nil
}

// Process is the queue handler. It renders the report file and records
// the outcome; errors are returned so the queue can retry.
func (s *ReportService) Process(ctx context.Context, queued jobs.Job) error {
	jobID, _ := queued.Payload.(string)
	if jobID == "" {
		jobID = queued.ID
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", jobID, err)
	}
	if job.Status == models.ReportJobCompleted || job.Status == models.ReportJobFailed {
		return nil
	}
	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	data, renderErr := s.render(ctx, job)
	if renderErr != nil {
		s.logger.Error("report generation failed",
			zap.String("job_id", job.ID),
			zap.String("type", string(job.Type)),
			zap.Error(renderErr))
		if err := s.repo.MarkFailed(ctx, job.ID, renderErr.Error()); err != nil {
			s.logger.Error("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		s.recordOutcome(job.Type, "failed")
		return nil
	}

	relPath := fmt.Sprintf("%s/%s.%s", strings.ToLower(string(job.Type)), job.ID, strings.ToLower(string(job.Format)))
	stored, err := s.store.Save(relPath, data)
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "storage failure"); markErr != nil {
			s.logger.Error("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return fmt.Errorf("store report file: %w", err)
	}
	if err := s.repo.MarkCompleted(ctx, job.ID, stored); err != nil {
		return fmt.Errorf("mark report completed: %w", err)
	}
	s.recordOutcome(job.Type, "completed")
	s.logger.Info("report generated",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Format)),
		zap.String("file", stored))
	return nil
}

func (s *ReportService) render(ctx context.Context, job *models.ReportJob) ([]byte, error) {
	var params reportParams
	if job.Params != "" {
		if err := json.Unmarshal([]byte(job.Params), &params); err != nil {
			return nil, fmt.Errorf("decode report params: %w", err)
		}
	}

	var (
		table export.Table
		err   error
	)
	switch job.Type {
	case models.ReportTypeStudents:
		table, err = s.studentTable(ctx, params)
	case models.ReportTypeGrades:
		table, err = s.gradeTable(ctx, params)
	case models.ReportTypeAttendance:
		table, err = s.attendanceTable(ctx, params)
	case models.ReportTypePayments:
		table, err = s.paymentTable(ctx)
	default:
		err = fmt.Errorf("unknown report type %q", job.Type)
	}
	if err != nil {
		return nil, err
	}

	switch job.Format {
	case models.ReportFormatPDF:
		return s.pdf.Render(table, reportTitle(job.Type))
	default:
		return s.csv.Render(table)
	}
}

func (s *ReportService) studentTable(ctx context.Context, params reportParams) (export.Table, error) {
	students, _, err := s.data.ListStudents(ctx, models.StudentFilter{
		SchoolID: params.SchoolID,
		ClassID:  params.ClassID,
		Page:     1,
		PageSize: reportExportLimit,
	})
	if err != nil {
		return export.Table{}, fmt.Errorf("list students: %w", err)
	}
	table := export.Table{Headers: []string{"Registration", "Name", "Email", "Status", "Enrolled At"}}
	for _, student := range students {
		table.Rows = append(table.Rows, []string{
			student.RegistrationCode,
			student.Name,
			student.Email,
			string(student.Status),
			student.EnrolledAt.Format("2006-01-02"),
		})
	}
	return table, nil
}

func (s *ReportService) gradeTable(ctx context.Context, params reportParams) (export.Table, error) {
	grades, _, err := s.data.ListGrades(ctx, models.GradeFilter{
		ClassID:  params.ClassID,
		Page:     1,
		PageSize: reportExportLimit,
	})
	if err != nil {
		return export.Table{}, fmt.Errorf("list grades: %w", err)
	}
	table := export.Table{Headers: []string{"Student", "Subject", "Assessment", "Score", "Graded At"}}
	for _, grade := range grades {
		table.Rows = append(table.Rows, []string{
			grade.StudentName,
			grade.SubjectName,
			grade.AssessmentName,
			strconv.FormatFloat(grade.Score, 'f', 2, 64),
			grade.UpdatedAt.Format("2006-01-02"),
		})
	}
	return table, nil
}

func (s *ReportService) attendanceTable(ctx context.Context, params reportParams) (export.Table, error) {
	records, _, err := s.data.ListAttendance(ctx, models.AttendanceFilter{
		ClassID:  params.ClassID,
		Page:     1,
		PageSize: reportExportLimit,
	})
	if err != nil {
		return export.Table{}, fmt.Errorf("list attendance: %w", err)
	}
	table := export.Table{Headers: []string{"Enrollment", "Date", "Present", "Justified"}}
	for _, record := range records {
		table.Rows = append(table.Rows, []string{
			record.EnrollmentID,
			record.Date.Format("2006-01-02"),
			strconv.FormatBool(record.Present),
			strconv.FormatBool(record.Justified),
		})
	}
	return table, nil
}

func (s *ReportService) paymentTable(ctx context.Context) (export.Table, error) {
	payments, _, err := s.data.ListPayments(ctx, models.PaymentFilter{
		Page:     1,
		PageSize: reportExportLimit,
	})
	if err != nil {
		return export.Table{}, fmt.Errorf("list payments: %w", err)
	}
	table := export.Table{Headers: []string{"Student", "Description", "Amount", "Due Date", "Status"}}
	for _, payment := range payments {
		table.Rows = append(table.Rows, []string{
			payment.StudentName,
			payment.Description,
			strconv.FormatFloat(payment.Amount, 'f', 2, 64),
			payment.DueDate.Format("2006-01-02"),
			string(payment.Status),
		})
	}
	return table, nil
}

func reportTitle(t models.ReportType) string {
	switch t {
	case models.ReportTypeStudents:
		return "Student Roster"
	case models.ReportTypeGrades:
		return "Grade Report"
	case models.ReportTypeAttendance:
		return "Attendance Report"
	case models.ReportTypePayments:
		return "Payment Report"
	default:
		return "Report"
	}
}

func downloadName(job *models.ReportJob) string {
	return fmt.Sprintf("%s-%s.%s",
		strings.ToLower(string(job.Type)),
		job.CreatedAt.Format("20060102"),
		strings.ToLower(string(job.Format)))
}
