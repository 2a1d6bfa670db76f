package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aams/internal/config"
	"aams/internal/kv"
	"aams/internal/realtime"
	"aams/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func testConfig() config.App {
	return config.App{
		Env:             "test",
		JWTIssuer:       "aams-dashboard",
		JWTSigningKey:   "test-signing-secret",
		SessionTTL:      time.Hour,
		RateLimitPerMin: 10000,
	}
}

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	writer := kv.NewWriter(kv.NewMemory(), kv.FlushImmediate, 0, nil)
	bus := realtime.NewMemoryBus()
	t.Cleanup(func() { bus.Close() })
	st := store.New(writer, bus, store.Options{LiveCodeTTL: time.Hour})
	if _, err := st.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return newRouter(testConfig(), st, nil, zap.NewNop()), st
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var token string
	if err := json.Unmarshal(decode(t, w)["token"], &token); err != nil || token == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}
	return token
}

func TestLogin(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/v1/login", "", gin.H{"email": "aman@aams.com", "password": "aman@aams"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	var user store.User
	if err := json.Unmarshal(resp["user"], &user); err != nil {
		t.Fatal(err)
	}
	if user.ID != "admin1" || user.Role != store.RoleAdmin {
		t.Fatalf("user %+v", user)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/login", "", gin.H{"email": "aman@aams.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/login", "", gin.H{"email": "aman@aams.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/v1/users", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/users", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", w.Code)
	}

	token := login(t, r, "rajesh@aams.com", "student123")
	w = doJSON(t, r, http.MethodGet, "/v1/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status %d body %s", w.Code, w.Body.String())
	}
	var users []store.User
	if err := json.Unmarshal(decode(t, w)["users"], &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 6 {
		t.Fatalf("%d users, want seeded 6", len(users))
	}
}

func TestUserRoleFilter(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r, "john@aams.com", "teacher123")

	w := doJSON(t, r, http.MethodGet, "/v1/users?role=student", token, nil)
	var students []store.User
	if err := json.Unmarshal(decode(t, w)["users"], &students); err != nil {
		t.Fatal(err)
	}
	if len(students) != 3 {
		t.Fatalf("%d students, want 3", len(students))
	}
	for _, u := range students {
		if u.Role != store.RoleStudent {
			t.Fatalf("non-student in filter: %+v", u)
		}
	}
}

func TestAdminGate(t *testing.T) {
	r, _ := newTestServer(t)
	studentToken := login(t, r, "rajesh@aams.com", "student123")
	adminToken := login(t, r, "aman@aams.com", "aman@aams")

	newUser := gin.H{"name": "New Person", "email": "new@aams.com", "password": "pw", "role": "student"}

	w := doJSON(t, r, http.MethodPost, "/v1/users", studentToken, newUser)
	if w.Code != http.StatusForbidden {
		t.Fatalf("student create: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/users", adminToken, newUser)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: status %d body %s", w.Code, w.Body.String())
	}
	var created store.User
	if err := json.Unmarshal(decode(t, w)["user"], &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("server should fill a fresh id")
	}

	w = doJSON(t, r, http.MethodPatch, "/v1/users/"+created.ID, adminToken, gin.H{"name": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/v1/users/"+created.ID, adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/users/"+created.ID, adminToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("read after delete: status %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/v1/users/"+created.ID, adminToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d", w.Code)
	}
}

func TestAttendanceEndpoints(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r, "john@aams.com", "teacher123")

	w := doJSON(t, r, http.MethodPost, "/v1/attendance", token, gin.H{
		"id": "a1", "studentId": "student1", "date": "2024-01-10",
		"status": "present", "subjectId": "sub1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/v1/attendance", token, gin.H{
		"id": "a2", "studentId": "student2", "date": "2024-01-10",
		"status": "absent", "subjectId": "sub1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/attendance?studentId=student1", token, nil)
	var records []store.Attendance
	if err := json.Unmarshal(decode(t, w)["attendance"], &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != "a1" {
		t.Fatalf("student filter: %+v", records)
	}
	if records[0].MarkedBy != "teacher1" {
		t.Fatalf("MarkedBy should come from the session: %+v", records[0])
	}

	w = doJSON(t, r, http.MethodPatch, "/v1/attendance/a1", token, gin.H{"status": "late"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status %d body %s", w.Code, w.Body.String())
	}
	var updated store.Attendance
	if err := json.Unmarshal(decode(t, w)["attendance"], &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Status != store.StatusLate {
		t.Fatalf("status %q", updated.Status)
	}

	w = doJSON(t, r, http.MethodPatch, "/v1/attendance/ghost", token, gin.H{"status": "late"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("patch unknown id: status %d", w.Code)
	}
}

func TestLiveCodeEndpoints(t *testing.T) {
	r, _ := newTestServer(t)
	teacherToken := login(t, r, "john@aams.com", "teacher123")
	studentToken := login(t, r, "rajesh@aams.com", "student123")

	w := doJSON(t, r, http.MethodGet, "/v1/live-code", studentToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no session yet: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/live-code", studentToken, gin.H{"code": "1234", "subjectId": "sub1"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("student start: status %d", w.Code)
	}

	// TeacherID defaults to the token's subject when omitted.
	w = doJSON(t, r, http.MethodPost, "/v1/live-code", teacherToken, gin.H{"code": "1234", "subjectId": "sub1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start session: status %d body %s", w.Code, w.Body.String())
	}
	var session store.LiveAttendanceCode
	if err := json.Unmarshal(decode(t, w)["session"], &session); err != nil {
		t.Fatal(err)
	}
	if session.TeacherID != "teacher1" {
		t.Fatalf("teacher id not defaulted from claims: %+v", session)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/live-code", studentToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("active session read: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/live-code/mark", studentToken, gin.H{"studentId": "student1", "code": "9999"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong code: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/live-code/mark", studentToken, gin.H{"studentId": "student1", "code": "1234"})
	if w.Code != http.StatusCreated {
		t.Fatalf("mark: status %d body %s", w.Code, w.Body.String())
	}
	var rec store.Attendance
	if err := json.Unmarshal(decode(t, w)["attendance"], &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Status != store.StatusPresent || rec.SubjectID != "sub1" {
		t.Fatalf("record %+v", rec)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/live-code/mark", studentToken, gin.H{"studentId": "student1", "code": "1234"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate mark: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/live-code/mark", studentToken, gin.H{"studentId": "ghost", "code": "1234"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown student: status %d", w.Code)
	}
}

func TestRegisteredCoursesEndpoints(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r, "rajesh@aams.com", "student123")

	// Absent record is rendered as an empty registration, not a 404.
	w := doJSON(t, r, http.MethodGet, "/v1/registered-courses/student1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("fresh read: status %d", w.Code)
	}
	var rec store.RegisteredCourses
	if err := json.Unmarshal(decode(t, w)["registeredCourses"], &rec); err != nil {
		t.Fatal(err)
	}
	if rec.StudentID != "student1" || len(rec.CourseIDs) != 0 {
		t.Fatalf("empty record %+v", rec)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/registered-courses", token, gin.H{
		"studentId": "student1", "courseIds": []string{"msub1", "msub2"},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/registered-courses/unregister", token, gin.H{
		"studentId": "student1", "courseIds": []string{"msub1"},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("unregister: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/registered-courses/student1", token, nil)
	if err := json.Unmarshal(decode(t, w)["registeredCourses"], &rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.CourseIDs) != 1 || rec.CourseIDs[0] != "msub2" {
		t.Fatalf("record %+v", rec)
	}
}

func TestTimetableStudentFilter(t *testing.T) {
	r, _ := newTestServer(t)
	teacherToken := login(t, r, "john@aams.com", "teacher123")

	for _, slot := range []gin.H{
		{"id": "tt1", "time": "09:00-10:00", "subjectId": "sub1", "teacherId": "teacher1", "className": "B.Tech CSE - A", "day": "Monday"},
		{"id": "tt2", "time": "10:00-11:00", "subjectId": "sub2", "teacherId": "teacher2", "className": "B.Tech CSE - B", "day": "Monday"},
	} {
		w := doJSON(t, r, http.MethodPost, "/v1/timetable", teacherToken, slot)
		if w.Code != http.StatusCreated {
			t.Fatalf("create slot: status %d body %s", w.Code, w.Body.String())
		}
	}

	// student1's course is "B.Tech CSE - A".
	w := doJSON(t, r, http.MethodGet, "/v1/timetable?studentId=student1", teacherToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("student filter: status %d", w.Code)
	}
	var slots []store.TimetableSlot
	if err := json.Unmarshal(decode(t, w)["timetable"], &slots); err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].ID != "tt1" {
		t.Fatalf("student timetable %+v", slots)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/timetable?studentId=ghost", teacherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown student: status %d", w.Code)
	}
}

func TestAnnouncementsStudentAudience(t *testing.T) {
	r, _ := newTestServer(t)
	teacherToken := login(t, r, "john@aams.com", "teacher123")

	w := doJSON(t, r, http.MethodPost, "/v1/announcements", teacherToken, gin.H{
		"id": "an1", "title": "Exam", "content": "Friday", "teacherId": "teacher1", "date": "2024-01-10",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/v1/announcements", teacherToken, gin.H{
		"id": "an2", "title": "Holiday", "content": "Monday off", "teacherId": "teacher2", "date": "2024-01-11",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}

	// Students see every announcement regardless of author.
	w = doJSON(t, r, http.MethodGet, "/v1/announcements?audience=student", teacherToken, nil)
	var items []store.Announcement
	if err := json.Unmarshal(decode(t, w)["announcements"], &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("student audience sees %d announcements, want 2", len(items))
	}

	w = doJSON(t, r, http.MethodGet, "/v1/announcements?teacherId=teacher2", teacherToken, nil)
	if err := json.Unmarshal(decode(t, w)["announcements"], &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "an2" {
		t.Fatalf("teacher filter %+v", items)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r, "rajesh@aams.com", "student123")
	adminToken := login(t, r, "aman@aams.com", "aman@aams")

	w := doJSON(t, r, http.MethodGet, "/v1/departments", token, nil)
	var departments []store.Department
	if err := json.Unmarshal(decode(t, w)["departments"], &departments); err != nil {
		t.Fatal(err)
	}
	if len(departments) != 5 {
		t.Fatalf("%d departments", len(departments))
	}

	w = doJSON(t, r, http.MethodGet, "/v1/sections?departmentId=dept1", token, nil)
	var sections []store.Section
	if err := json.Unmarshal(decode(t, w)["sections"], &sections); err != nil {
		t.Fatal(err)
	}
	if len(sections) != 2 {
		t.Fatalf("%d sections in dept1", len(sections))
	}

	w = doJSON(t, r, http.MethodPost, "/v1/departments", token, gin.H{"name": "X", "code": "X"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("student create department: status %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/v1/departments", adminToken, gin.H{"name": "Robotics", "code": "RBT"})
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create department: status %d body %s", w.Code, w.Body.String())
	}
}

func TestHealthAndCORS(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/v1/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight: status %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin %q", got)
	}
}
