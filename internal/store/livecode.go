package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"aams/internal/kv"
	"aams/internal/realtime"
)

// LiveSessionPayload is the add-event payload announcing a new live
// attendance session on the attendance channel.
type LiveSessionPayload struct {
	Type    string             `json:"type"` // always "live_session"
	Session LiveAttendanceCode `json:"session"`
}

// SetLiveAttendanceCode starts a live session, overwriting any previous
// one. The session expires after the store's configured TTL.
func (s *Store) SetLiveAttendanceCode(code, subjectID, teacherID string) (*LiveAttendanceCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := LiveAttendanceCode{
		Code:      code,
		SubjectID: subjectID,
		TeacherID: teacherID,
		Timestamp: s.now().UnixMilli(),
		ExpiresAt: s.now().Add(s.codeTTL).UnixMilli(),
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, &WriteError{Key: keyLiveAttendanceCode, Err: err}
	}
	if err := s.kv.Put(keyLiveAttendanceCode, raw); err != nil {
		return nil, &WriteError{Key: keyLiveAttendanceCode, Err: err}
	}
	s.publish(realtime.Event{
		Type:   realtime.ChangeAdd,
		Entity: realtime.EntityAttendance,
		Data:   LiveSessionPayload{Type: "live_session", Session: session},
		UserID: teacherID,
	})
	return &session, nil
}

// LiveAttendanceCode returns the active session, or nil when none exists
// or the stored one has expired. Expiry is checked lazily here; an
// expired entry is removed on the read that notices it.
func (s *Store) LiveAttendanceCode() (*LiveAttendanceCode, error) {
	raw, err := s.kv.Get(keyLiveAttendanceCode)
	if err != nil {
		if errors.Is(err, kv.ErrNoKey) {
			return nil, nil
		}
		return nil, &DeserializationError{Key: keyLiveAttendanceCode, Err: err}
	}
	var session LiveAttendanceCode
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, &DeserializationError{Key: keyLiveAttendanceCode, Err: err}
	}
	if session.ExpiresAt != 0 && session.ExpiresAt < s.now().UnixMilli() {
		_ = s.kv.Delete(keyLiveAttendanceCode)
		return nil, nil
	}
	return &session, nil
}

// MarkLiveAttendance validates the code against the active session and
// records the student as present for today. The check and the insert are
// two separate store calls, not a transaction.
func (s *Store) MarkLiveAttendance(studentID, code string) (*Attendance, error) {
	session, err := s.LiveAttendanceCode()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	if session.Code != code {
		return nil, ErrCodeMismatch
	}

	today := s.now().UTC().Format("2006-01-02")
	records, err := s.AllAttendance()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.StudentID == studentID && rec.Date == today && rec.SubjectID == session.SubjectID && rec.Status != StatusHoliday {
			return nil, ErrAlreadyMarked
		}
	}

	student, err := s.UserByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != RoleStudent {
		return nil, ErrUnknownStudent
	}
	subject, err := s.SubjectByID(session.SubjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, ErrUnknownSubject
	}

	rec := Attendance{
		ID:           "att_" + uuid.NewString(),
		StudentID:    studentID,
		Date:         today,
		Status:       StatusPresent,
		DepartmentID: student.Department,
		SectionID:    student.Section,
		SubjectID:    session.SubjectID,
		MarkedBy:     session.TeacherID,
		MarkedAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.AddAttendance(rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
