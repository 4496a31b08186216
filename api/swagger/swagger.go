package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIGE API",
        "description": "School management information system",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and password management"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Schools", "description": "Schools, courses and subjects"},
        {"name": "Students", "description": "Student records"},
        {"name": "Teachers", "description": "Teaching staff"},
        {"name": "Classes", "description": "Classes and roster reconciliation"},
        {"name": "Enrollments", "description": "Enrollment lifecycle"},
        {"name": "Attendance", "description": "Attendance sheets and summaries"},
        {"name": "Grades", "description": "Assessments and grading"},
        {"name": "Finance", "description": "Payment plans and installments"},
        {"name": "Communication", "description": "Announcements and messages"},
        {"name": "Dashboard", "description": "Management overview"},
        {"name": "Reports", "description": "Asynchronous exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "statusCode": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "hasNextPage": {"type": "boolean"},
                "hasPreviousPage": {"type": "boolean"}
            }
        },
        "PagedResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "currentPage": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "hasNextPage": {"type": "boolean"},
                "hasPreviousPage": {"type": "boolean"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
