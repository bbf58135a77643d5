package slot_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"doctor-booking/apperr"
	"doctor-booking/doctor"
	"doctor-booking/slot"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `INSERT INTO slots (id, doctor_id, time) VALUES ($1, $2, $3)`
	selectQuery = `SELECT id, doctor_id, time FROM slots WHERE doctor_id = $1 ORDER BY time ASC`
	lockDoctor  = `SELECT id FROM doctors WHERE id = $1 FOR SHARE`
)

// MockDoctorAccessor is a mock implementation of DoctorAccessor interface
type MockDoctorAccessor struct {
	testifymock.Mock
}

func (m *MockDoctorAccessor) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*doctor.Doctor)
	return d, args.Error(1)
}

func setup(t *testing.T) (*slot.Accessor, sqlmock.Sqlmock, *MockDoctorAccessor) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	doctorAccessor := new(MockDoctorAccessor)
	return slot.NewAccessor(db, doctorAccessor), dbMock, doctorAccessor
}

func TestCreateSlot(t *testing.T) {
	t.Parallel()

	doctorID := uuid.New()
	existing := &doctor.Doctor{ID: doctorID, Name: "Dr. Sarah Smith"}
	instant := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("create slot", func(t *testing.T) {
		t.Parallel()
		a, dbMock, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(existing, nil)
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), doctorID, instant).
			WillReturnResult(sqlmock.NewResult(1, 1))

		s, err := a.CreateSlot(t.Context(), doctorID, instant)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, s.ID)
		assert.Equal(t, doctorID, s.DoctorID)
		assert.True(t, instant.Equal(s.Time))

		require.NoError(t, dbMock.ExpectationsWereMet())
		doctors.AssertExpectations(t)
	})

	t.Run("duplicate instants are allowed", func(t *testing.T) {
		t.Parallel()
		a, dbMock, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(existing, nil)
		for range 2 {
			dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
				WithArgs(sqlmock.AnyArg(), doctorID, instant).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}

		first, err := a.CreateSlot(t.Context(), doctorID, instant)
		require.NoError(t, err)
		second, err := a.CreateSlot(t.Context(), doctorID, instant)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.True(t, first.Time.Equal(second.Time))

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown doctor", func(t *testing.T) {
		t.Parallel()
		a, dbMock, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(nil, nil)

		_, err := a.CreateSlot(t.Context(), doctorID, instant)
		require.ErrorIs(t, err, apperr.ErrNotFound)

		// no insert was attempted
		require.NoError(t, dbMock.ExpectationsWereMet())
		doctors.AssertExpectations(t)
	})

	t.Run("doctor deleted before insert", func(t *testing.T) {
		t.Parallel()
		a, dbMock, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(existing, nil)
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), doctorID, instant).
			WillReturnError(&pq.Error{Code: "23503"})

		_, err := a.CreateSlot(t.Context(), doctorID, instant)
		require.ErrorIs(t, err, apperr.ErrNotFound)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("zero time", func(t *testing.T) {
		t.Parallel()
		a, _, doctors := setup(t)

		_, err := a.CreateSlot(t.Context(), doctorID, time.Time{})
		require.ErrorIs(t, err, apperr.ErrValidation)
		doctors.AssertNotCalled(t, "GetDoctor")
	})

	t.Run("doctor lookup error", func(t *testing.T) {
		t.Parallel()
		a, _, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).
			Return(nil, apperr.Storage("select doctor", sql.ErrConnDone))

		_, err := a.CreateSlot(t.Context(), doctorID, instant)
		require.ErrorIs(t, err, apperr.ErrStorage)
		assert.Contains(t, err.Error(), "get doctor")
	})
}

func TestGetSlotsForDoctor(t *testing.T) {
	t.Parallel()

	doctorID := uuid.New()

	t.Run("get slots", func(t *testing.T) {
		t.Parallel()
		a, dbMock, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(&doctor.Doctor{ID: doctorID}, nil)
		nine := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		ten := nine.Add(time.Hour)
		dbMock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
			WithArgs(doctorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_id", "time"}).
				AddRow(uuid.New(), doctorID, nine).
				AddRow(uuid.New(), doctorID, ten))

		slots, err := a.GetSlotsForDoctor(t.Context(), doctorID)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.True(t, nine.Equal(slots[0].Time))
		assert.True(t, ten.Equal(slots[1].Time))

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("doctor without slots", func(t *testing.T) {
		t.Parallel()
		a, dbMock, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(&doctor.Doctor{ID: doctorID}, nil)
		dbMock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
			WithArgs(doctorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_id", "time"}))

		slots, err := a.GetSlotsForDoctor(t.Context(), doctorID)
		require.NoError(t, err)
		assert.NotNil(t, slots)
		assert.Empty(t, slots)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		t.Parallel()
		a, _, doctors := setup(t)

		doctors.On("GetDoctor", testifymock.Anything, doctorID).Return(nil, nil)

		_, err := a.GetSlotsForDoctor(t.Context(), doctorID)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCreateSlotsForDate(t *testing.T) {
	t.Parallel()

	doctorID := uuid.New()
	nine := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	ten := nine.Add(time.Hour)

	t.Run("all slots in one transaction", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setup(t)

		dbMock.ExpectBegin()
		dbMock.ExpectQuery(regexp.QuoteMeta(lockDoctor)).
			WithArgs(doctorID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(doctorID))
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), doctorID, nine).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), doctorID, ten).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectCommit()

		slots, err := a.CreateSlotsForDate(t.Context(), doctorID, "2024-06-01", []string{"10:00", "09:00"}, time.UTC)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, "2024-06-01T09:00:00Z", slots[0].Time.Format(time.RFC3339))
		assert.Equal(t, "2024-06-01T10:00:00Z", slots[1].Time.Format(time.RFC3339))

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("insert failure keeps nothing", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setup(t)

		dbMock.ExpectBegin()
		dbMock.ExpectQuery(regexp.QuoteMeta(lockDoctor)).
			WithArgs(doctorID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(doctorID))
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), doctorID, nine).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), doctorID, ten).
			WillReturnError(sql.ErrConnDone)
		dbMock.ExpectRollback()

		_, err := a.CreateSlotsForDate(t.Context(), doctorID, "2024-06-01", []string{"09:00", "10:00"}, time.UTC)
		require.ErrorIs(t, err, apperr.ErrStorage)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown doctor", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setup(t)

		dbMock.ExpectBegin()
		dbMock.ExpectQuery(regexp.QuoteMeta(lockDoctor)).
			WithArgs(doctorID).
			WillReturnError(sql.ErrNoRows)
		dbMock.ExpectRollback()

		_, err := a.CreateSlotsForDate(t.Context(), doctorID, "2024-06-01", []string{"09:00"}, time.UTC)
		require.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid input never opens a transaction", func(t *testing.T) {
		t.Parallel()
		a, dbMock, _ := setup(t)

		_, err := a.CreateSlotsForDate(t.Context(), doctorID, "2024-13-45", []string{"09:00"}, time.UTC)
		require.ErrorIs(t, err, apperr.ErrValidation)

		require.NoError(t, dbMock.ExpectationsWereMet())
	})
}
