package main

import (
	"github.com/gin-gonic/gin"

	"github.com/sige-edu/sige-api/internal/handler"
	"github.com/sige-edu/sige-api/internal/middleware"
	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/service"
)

type routeHandlers struct {
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	schools       *handler.SchoolHandler
	students      *handler.StudentHandler
	teachers      *handler.TeacherHandler
	classes       *handler.ClassHandler
	enrollments   *handler.EnrollmentHandler
	attendance    *handler.AttendanceHandler
	grades        *handler.GradeHandler
	finance       *handler.FinanceHandler
	communication *handler.CommunicationHandler
	dashboard     *handler.DashboardHandler
	reports       *handler.ReportHandler
}

func registerRoutes(api *gin.RouterGroup, authService *service.AuthService, h routeHandlers) {
	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/refresh", h.auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	authed.GET("/auth/me", h.auth.Me)
	authed.POST("/auth/logout", h.auth.Logout)
	authed.PUT("/auth/password", h.auth.ChangePassword)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleDirector)
	teaching := middleware.RequireRoles(models.RoleAdmin, models.RoleDirector, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	users := authed.Group("/users")
	{
		users.GET("", adminOnly, h.users.List)
		users.POST("", adminOnly, h.users.Create)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.users.Get)
		users.PUT("/:id", adminOnly, h.users.Update)
		users.DELETE("/:id", adminOnly, h.users.Delete)
	}

	schools := authed.Group("/schools")
	{
		schools.GET("", staff, h.schools.List)
		schools.POST("", adminOnly, h.schools.Create)
		schools.GET("/:id", staff, h.schools.Get)
		schools.GET("/:id/stats", staff, h.schools.Stats)
		schools.PUT("/:id", adminOnly, h.schools.Update)
		schools.DELETE("/:id", adminOnly, h.schools.Delete)
		schools.GET("/:id/courses", staff, h.schools.ListCourses)
		schools.POST("/:id/courses", staff, h.schools.CreateCourse)
	}

	courses := authed.Group("/courses")
	{
		courses.GET("/:id", staff, h.schools.GetCourse)
		courses.PUT("/:id", staff, h.schools.UpdateCourse)
		courses.GET("/:id/subjects", teaching, h.schools.ListSubjects)
		courses.POST("/:id/subjects", staff, h.schools.CreateSubject)
	}

	students := authed.Group("/students")
	{
		students.GET("", staff, h.students.List)
		students.POST("", staff, h.students.Create)
		students.GET("/:id", teaching, h.students.Get)
		students.PUT("/:id", staff, h.students.Update)
		students.DELETE("/:id", staff, h.students.Delete)
	}

	teachers := authed.Group("/teachers")
	{
		teachers.GET("", staff, h.teachers.List)
		teachers.POST("", staff, h.teachers.Create)
		teachers.GET("/:id", staff, h.teachers.Get)
		teachers.PUT("/:id", staff, h.teachers.Update)
		teachers.DELETE("/:id", adminOnly, h.teachers.Delete)
	}

	classes := authed.Group("/classes")
	{
		classes.GET("", teaching, h.classes.List)
		classes.GET("/catalog", staff, h.classes.Catalog)
		classes.POST("", staff, h.classes.Create)
		classes.GET("/:id", teaching, h.classes.Get)
		classes.PUT("/:id", staff, h.classes.Update)
		classes.DELETE("/:id", adminOnly, h.classes.Delete)
		classes.GET("/:id/roster", teaching, h.classes.Roster)
		classes.POST("/:id/enrollments", staff, h.classes.Enroll)
		classes.POST("/:id/roster/sync", staff, h.classes.SyncRoster)
		classes.GET("/:id/attendance/summary", teaching, h.attendance.ClassSummary)
		classes.GET("/:id/assessments", teaching, h.grades.ListAssessments)
	}

	enrollments := authed.Group("/enrollments")
	{
		enrollments.GET("", teaching, h.enrollments.List)
		enrollments.GET("/:id", teaching, h.enrollments.Get)
		enrollments.PUT("/:id/status", staff, h.enrollments.SetStatus)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.GET("", teaching, h.attendance.List)
		attendance.POST("", teaching, h.attendance.Record)
	}

	assessments := authed.Group("/assessments")
	{
		assessments.POST("", teaching, h.grades.CreateAssessment)
		assessments.POST("/:id/grades", teaching, h.grades.RecordGrades)
	}
	authed.GET("/grades", teaching, h.grades.List)

	finance := authed.Group("/finance")
	{
		finance.GET("/plans", staff, h.finance.ListPlans)
		finance.POST("/plans", staff, h.finance.CreatePlan)
		finance.POST("/plans/enroll", staff, h.finance.EnrollInPlan)
		finance.GET("/payments", staff, h.finance.ListPayments)
		finance.POST("/payments", staff, h.finance.CreatePayment)
		finance.POST("/payments/:id/settle", staff, h.finance.Settle)
		finance.DELETE("/payments/:id", staff, h.finance.Cancel)
		finance.GET("/summary", staff, h.finance.Summary)
	}

	announcements := authed.Group("/announcements")
	{
		announcements.GET("", h.communication.ListAnnouncements)
		announcements.POST("", staff, h.communication.CreateAnnouncement)
		announcements.GET("/:id", h.communication.GetAnnouncement)
		announcements.PUT("/:id", staff, h.communication.UpdateAnnouncement)
		announcements.POST("/:id/publish", staff, h.communication.PublishAnnouncement)
		announcements.DELETE("/:id", staff, h.communication.DeleteAnnouncement)
	}

	messages := authed.Group("/messages")
	{
		messages.GET("", h.communication.ListMessages)
		messages.POST("", h.communication.SendMessage)
		messages.GET("/unread", h.communication.UnreadCount)
		messages.GET("/:id", h.communication.ReadMessage)
	}

	authed.GET("/dashboard", staff, h.dashboard.Overview)

	reports := authed.Group("/reports")
	{
		reports.GET("", staff, h.reports.List)
		reports.POST("/generate", staff, h.reports.Generate)
		reports.GET("/download", staff, h.reports.Download)
		reports.GET("/:id", staff, h.reports.Status)
	}
}
