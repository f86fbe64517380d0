package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mindmirror-server/internal/handlers"
	"mindmirror-server/internal/models"
	"mindmirror-server/internal/notify"
	"mindmirror-server/internal/scheduling"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, models.Migrate(db), "migrate")
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, email string) models.User {
	t.Helper()
	user := models.User{Email: email, FirstName: "Test", LastName: string(role), Role: role}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

// newRouter wires the scheduling handlers behind a stub auth layer that
// injects the given identity, so tests exercise the same role checks the
// real middleware feeds.
func newRouter(db *gorm.DB, userID string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := scheduling.NewService(db, notify.LogNotifier{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
	})

	availabilityHandler := handlers.NewAvailabilityHandler(svc)
	appointmentHandler := handlers.NewAppointmentHandler(svc)

	router.POST("/api/therapist/:id/availability", availabilityHandler.SetAvailability)
	router.GET("/api/therapist/:id/availability", availabilityHandler.GetAvailability)
	router.POST("/api/therapist/:id/availability/tentative", availabilityHandler.SetTentativeAvailability)
	router.POST("/api/appointments/cancel-criteria", appointmentHandler.CancelByCriteria)
	router.PATCH("/api/appointments/:id/cancel", appointmentHandler.Cancel)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSetAndGetAvailability(t *testing.T) {
	db := newTestDB(t)
	therapist := createUser(t, db, models.RoleTherapist, "t@mindmirror.test")
	router := newRouter(db, therapist.ID, models.RoleTherapist)

	w := doJSON(t, router, http.MethodPost, "/api/therapist/"+therapist.ID+"/availability",
		gin.H{"date": "2024-06-10", "availability": "full_day"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeEnvelope(t, w).Success)

	w = doJSON(t, router, http.MethodPost, "/api/therapist/"+therapist.ID+"/availability/tentative",
		gin.H{"date": "2024-06-11", "availability": "morning", "reason": "conference"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/therapist/"+therapist.ID+"/availability?date=2024-06-11", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view scheduling.AvailabilityView
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, models.AvailabilityMorning, view.Availability)
	assert.True(t, view.Tentative)
	assert.Equal(t, "conference", view.Reason)
}

func TestSetAvailability_ForbiddenForOtherTherapist(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, models.RoleTherapist, "owner@mindmirror.test")
	intruder := createUser(t, db, models.RoleTherapist, "intruder@mindmirror.test")
	router := newRouter(db, intruder.ID, models.RoleTherapist)

	w := doJSON(t, router, http.MethodPost, "/api/therapist/"+owner.ID+"/availability",
		gin.H{"date": "2024-06-10", "availability": "morning"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestSetAvailability_BadDateRejected(t *testing.T) {
	db := newTestDB(t)
	therapist := createUser(t, db, models.RoleTherapist, "t@mindmirror.test")
	router := newRouter(db, therapist.ID, models.RoleTherapist)

	w := doJSON(t, router, http.MethodPost, "/api/therapist/"+therapist.ID+"/availability",
		gin.H{"date": "June 10th", "availability": "morning"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelByCriteria_EndToEndOverHTTP(t *testing.T) {
	db := newTestDB(t)
	therapist := createUser(t, db, models.RoleTherapist, "t@mindmirror.test")
	patient := createUser(t, db, models.RolePatient, "p@mindmirror.test")
	router := newRouter(db, therapist.ID, models.RoleTherapist)

	appt := models.Appointment{
		PatientID:        patient.ID,
		TherapistID:      therapist.ID,
		Date:             "2024-06-10",
		TimeSlot:         "10:00-11:00",
		AvailabilityType: models.AvailabilityMorning,
		Status:           models.StatusScheduled,
		PaymentID:        "pay-1",
	}
	require.NoError(t, db.Create(&appt).Error)

	w := doJSON(t, router, http.MethodPost, "/api/appointments/cancel-criteria", gin.H{
		"therapistId":      therapist.ID,
		"date":             "2024-06-10",
		"availabilityType": "morning",
		"reason":           "family emergency",
		"shouldReschedule": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var result scheduling.CancelResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Affected)

	var got models.Appointment
	require.NoError(t, db.First(&got, "id = ?", appt.ID).Error)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestCancelByCriteria_NoMatchIsSoftSuccess(t *testing.T) {
	db := newTestDB(t)
	therapist := createUser(t, db, models.RoleTherapist, "t@mindmirror.test")
	router := newRouter(db, therapist.ID, models.RoleTherapist)

	w := doJSON(t, router, http.MethodPost, "/api/appointments/cancel-criteria", gin.H{
		"therapistId": therapist.ID,
		"date":        "2024-06-10",
	})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var result scheduling.CancelResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Zero(t, result.Affected)
}

func TestCancelOne_NotFound(t *testing.T) {
	db := newTestDB(t)
	therapist := createUser(t, db, models.RoleTherapist, "t@mindmirror.test")
	router := newRouter(db, therapist.ID, models.RoleTherapist)

	w := doJSON(t, router, http.MethodPatch, "/api/appointments/missing-id/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}
