package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aams/internal/auth"
	"aams/internal/store"
)

func registerUserRoutes(v1 *gin.RouterGroup, st *store.Store, logger *zap.Logger) {
	v1.GET("/users", func(c *gin.Context) {
		var users []store.User
		var err error
		switch store.Role(c.Query("role")) {
		case store.RoleStudent:
			users, err = st.Students()
		case store.RoleTeacher:
			users, err = st.Teachers()
		default:
			users, err = st.Users()
		}
		respondList(c, logger, "users", users, err)
	})

	v1.GET("/users/:id", func(c *gin.Context) {
		user, err := st.UserByID(c.Param("id"))
		if err != nil {
			logger.Warn("user read degraded", zap.Error(err))
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	})

	admin := v1.Group("", auth.RequireRole("admin"))

	admin.POST("/users", func(c *gin.Context) {
		var user store.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if user.ID == "" {
			user.ID = store.NewID()
		}
		if err := st.AddUser(user); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	})

	admin.PATCH("/users/:id", func(c *gin.Context) {
		var upd store.UserUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := st.UpdateUser(c.Param("id"), upd)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	})

	admin.DELETE("/users/:id", func(c *gin.Context) {
		if err := st.DeleteUser(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func registerAttendanceRoutes(v1 *gin.RouterGroup, st *store.Store, logger *zap.Logger) {
	v1.GET("/attendance", func(c *gin.Context) {
		var records []store.Attendance
		var err error
		switch {
		case c.Query("studentId") != "":
			records, err = st.StudentAttendance(c.Query("studentId"))
		case c.Query("departmentId") != "" && c.Query("date") != "":
			records, err = st.AttendanceByDepartmentAndDate(c.Query("departmentId"), c.Query("date"))
		case c.Query("departmentId") != "":
			records, err = st.AttendanceByDepartment(c.Query("departmentId"))
		case c.Query("sectionId") != "":
			records, err = st.AttendanceBySection(c.Query("sectionId"))
		default:
			records, err = st.AllAttendance()
		}
		respondList(c, logger, "attendance", records, err)
	})

	v1.POST("/attendance", func(c *gin.Context) {
		var rec store.Attendance
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if rec.ID == "" {
			rec.ID = store.NewID()
		}
		if err := st.AddAttendance(rec); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"attendance": rec})
	})

	v1.PATCH("/attendance/:id", func(c *gin.Context) {
		var req struct {
			Status store.AttendanceStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec, err := st.UpdateAttendance(c.Param("id"), req.Status)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"attendance": rec})
	})

	v1.DELETE("/attendance/:id", func(c *gin.Context) {
		if err := st.DeleteAttendance(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func registerAcademicRoutes(v1 *gin.RouterGroup, st *store.Store, logger *zap.Logger) {
	v1.GET("/subjects", func(c *gin.Context) {
		var subjects []store.Subject
		var err error
		if teacherID := c.Query("teacherId"); teacherID != "" {
			subjects, err = st.TeacherSubjects(teacherID)
		} else {
			subjects, err = st.Subjects()
		}
		respondList(c, logger, "subjects", subjects, err)
	})

	v1.POST("/subjects", func(c *gin.Context) {
		var sub store.Subject
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if sub.ID == "" {
			sub.ID = store.NewID()
		}
		if err := st.AddSubject(sub); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"subject": sub})
	})

	v1.GET("/announcements", func(c *gin.Context) {
		var items []store.Announcement
		var err error
		switch {
		case c.Query("teacherId") != "":
			items, err = st.TeacherAnnouncements(c.Query("teacherId"))
		case c.Query("audience") == "student":
			items, err = st.StudentAnnouncements()
		default:
			items, err = st.Announcements()
		}
		respondList(c, logger, "announcements", items, err)
	})

	v1.POST("/announcements", func(c *gin.Context) {
		var a store.Announcement
		if err := c.ShouldBindJSON(&a); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if a.ID == "" {
			a.ID = store.NewID()
		}
		if err := st.AddAnnouncement(a); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"announcement": a})
	})

	v1.DELETE("/announcements/:id", func(c *gin.Context) {
		if err := st.DeleteAnnouncement(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	v1.GET("/timetable", func(c *gin.Context) {
		var slots []store.TimetableSlot
		var err error
		switch {
		case c.Query("studentId") != "":
			student, uerr := st.UserByID(c.Query("studentId"))
			if uerr != nil {
				logger.Warn("student read degraded", zap.Error(uerr))
			}
			if student == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			slots, err = st.StudentTimetable(*student)
		case c.Query("teacherId") != "":
			slots, err = st.TeacherTimetable(c.Query("teacherId"))
		default:
			slots, err = st.Timetable()
		}
		respondList(c, logger, "timetable", slots, err)
	})

	v1.POST("/timetable", func(c *gin.Context) {
		var slot store.TimetableSlot
		if err := c.ShouldBindJSON(&slot); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if slot.ID == "" {
			slot.ID = store.NewID()
		}
		if err := st.AddTimetableSlot(slot); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"slot": slot})
	})

	v1.PATCH("/timetable/:id", func(c *gin.Context) {
		var upd store.TimetableUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slot, err := st.UpdateTimetableSlot(c.Param("id"), upd)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"slot": slot})
	})

	v1.DELETE("/timetable/:id", func(c *gin.Context) {
		if err := st.DeleteTimetableSlot(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	v1.GET("/departments", func(c *gin.Context) {
		departments, err := st.Departments()
		respondList(c, logger, "departments", departments, err)
	})

	v1.GET("/sections", func(c *gin.Context) {
		var sections []store.Section
		var err error
		if deptID := c.Query("departmentId"); deptID != "" {
			sections, err = st.SectionsByDepartment(deptID)
		} else {
			sections, err = st.Sections()
		}
		respondList(c, logger, "sections", sections, err)
	})

	v1.GET("/master-subjects", func(c *gin.Context) {
		var subjects []store.MasterSubject
		var err error
		if deptID := c.Query("departmentId"); deptID != "" {
			subjects, err = st.MasterSubjectsByDepartment(deptID)
		} else {
			subjects, err = st.MasterSubjects()
		}
		respondList(c, logger, "masterSubjects", subjects, err)
	})

	admin := v1.Group("", auth.RequireRole("admin"))

	admin.POST("/departments", func(c *gin.Context) {
		var d store.Department
		if err := c.ShouldBindJSON(&d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if d.ID == "" {
			d.ID = store.NewID()
		}
		if err := st.AddDepartment(d); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"department": d})
	})

	admin.PATCH("/departments/:id", func(c *gin.Context) {
		var upd store.CatalogUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := st.UpdateDepartment(c.Param("id"), upd)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"department": d})
	})

	admin.DELETE("/departments/:id", func(c *gin.Context) {
		if err := st.DeleteDepartment(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.POST("/sections", func(c *gin.Context) {
		var sec store.Section
		if err := c.ShouldBindJSON(&sec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if sec.ID == "" {
			sec.ID = store.NewID()
		}
		if err := st.AddSection(sec); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"section": sec})
	})

	admin.DELETE("/sections/:id", func(c *gin.Context) {
		if err := st.DeleteSection(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.POST("/master-subjects", func(c *gin.Context) {
		var sub store.MasterSubject
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if sub.ID == "" {
			sub.ID = store.NewID()
		}
		if err := st.AddMasterSubject(sub); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"masterSubject": sub})
	})

	admin.DELETE("/master-subjects/:id", func(c *gin.Context) {
		if err := st.DeleteMasterSubject(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func registerRegistrationRoutes(v1 *gin.RouterGroup, st *store.Store, logger *zap.Logger) {
	v1.GET("/course-registrations", func(c *gin.Context) {
		var regs []store.CourseRegistration
		var err error
		switch {
		case c.Query("open") == "true":
			regs, err = st.OpenCourseRegistrations()
		case c.Query("departmentId") != "":
			regs, err = st.CourseRegistrationsByDepartment(c.Query("departmentId"))
		default:
			regs, err = st.CourseRegistrations()
		}
		respondList(c, logger, "registrations", regs, err)
	})

	admin := v1.Group("", auth.RequireRole("admin"))

	admin.POST("/course-registrations", func(c *gin.Context) {
		var reg store.CourseRegistration
		if err := c.ShouldBindJSON(&reg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if reg.ID == "" {
			reg.ID = store.NewID()
		}
		if err := st.AddCourseRegistration(reg); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"registration": reg})
	})

	admin.PATCH("/course-registrations/:id", func(c *gin.Context) {
		var upd store.CourseRegistrationUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reg, err := st.UpdateCourseRegistration(c.Param("id"), upd)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"registration": reg})
	})

	admin.DELETE("/course-registrations/:id", func(c *gin.Context) {
		if err := st.DeleteCourseRegistration(c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	v1.GET("/registered-courses/:studentId", func(c *gin.Context) {
		rec, err := st.RegisteredCoursesForStudent(c.Param("studentId"))
		if err != nil {
			logger.Warn("registered courses read degraded", zap.Error(err))
		}
		if rec == nil {
			rec = &store.RegisteredCourses{StudentID: c.Param("studentId"), CourseIDs: []string{}}
		}
		c.JSON(http.StatusOK, gin.H{"registeredCourses": rec})
	})

	v1.POST("/registered-courses", func(c *gin.Context) {
		var req struct {
			StudentID string   `json:"studentId" binding:"required"`
			CourseIDs []string `json:"courseIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := st.RegisterCourses(req.StudentID, req.CourseIDs); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	v1.POST("/registered-courses/unregister", func(c *gin.Context) {
		var req struct {
			StudentID string   `json:"studentId" binding:"required"`
			CourseIDs []string `json:"courseIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := st.UnregisterCourses(req.StudentID, req.CourseIDs); err != nil {
			writeStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func registerLiveCodeRoutes(v1 *gin.RouterGroup, st *store.Store, logger *zap.Logger) {
	v1.GET("/live-code", func(c *gin.Context) {
		session, err := st.LiveAttendanceCode()
		if err != nil {
			logger.Warn("live code read degraded", zap.Error(err))
		}
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": session})
	})

	v1.POST("/live-code", auth.RequireRole("teacher", "admin"), func(c *gin.Context) {
		var req struct {
			Code      string `json:"code" binding:"required"`
			SubjectID string `json:"subjectId"`
			TeacherID string `json:"teacherId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.TeacherID == "" {
			if claimsAny, ok := c.Get("claims"); ok {
				if claims, ok := claimsAny.(auth.Claims); ok {
					req.TeacherID = claims.UserID
				}
			}
		}
		session, err := st.SetLiveAttendanceCode(req.Code, req.SubjectID, req.TeacherID)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"session": session})
	})

	v1.POST("/live-code/mark", func(c *gin.Context) {
		var req struct {
			StudentID string `json:"studentId" binding:"required"`
			Code      string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec, err := st.MarkLiveAttendance(req.StudentID, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNoActiveSession):
				c.JSON(http.StatusNotFound, gin.H{"error": "no active attendance session"})
			case errors.Is(err, store.ErrCodeMismatch):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendance code"})
			case errors.Is(err, store.ErrAlreadyMarked):
				c.JSON(http.StatusConflict, gin.H{"error": "already marked for this subject today"})
			case errors.Is(err, store.ErrUnknownStudent), errors.Is(err, store.ErrUnknownSubject):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student or subject"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusCreated, gin.H{"attendance": rec})
	})
}
