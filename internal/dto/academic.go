package dto

// RecordAttendanceRequest captures POST /attendance payload: one call
// records a whole class for a date.
type RecordAttendanceRequest struct {
	ClassID   string            `json:"classId" validate:"required,uuid"`
	SubjectID *string           `json:"subjectId,omitempty" validate:"omitempty,uuid"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries   []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceEntry marks one enrollment for the batch date.
type AttendanceEntry struct {
	EnrollmentID string  `json:"enrollmentId" validate:"required,uuid"`
	Present      bool    `json:"present"`
	Justified    bool    `json:"justified"`
	Note         *string `json:"note,omitempty"`
}

// CreateAssessmentRequest captures POST /assessments payload.
type CreateAssessmentRequest struct {
	ClassID   string  `json:"classId" validate:"required,uuid"`
	SubjectID string  `json:"subjectId" validate:"required,uuid"`
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Weight    float64 `json:"weight" validate:"required,gt=0,lte=10"`
	MaxScore  float64 `json:"maxScore" validate:"required,gt=0,lte=100"`
	AppliedAt string  `json:"appliedAt" validate:"required,datetime=2006-01-02"`
}

// RecordGradesRequest captures POST /assessments/:id/grades payload.
type RecordGradesRequest struct {
	Grades []GradeEntry `json:"grades" validate:"required,min=1,dive"`
}

// GradeEntry is one student's score for the assessment.
type GradeEntry struct {
	EnrollmentID string  `json:"enrollmentId" validate:"required,uuid"`
	Score        float64 `json:"score" validate:"gte=0"`
	Comment      *string `json:"comment,omitempty"`
}
