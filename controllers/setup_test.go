package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/database"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/repository"
	"github.com/yeremiapane/restaurant-reservation/router"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

const testSecret = "controllers-test-secret"

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	tables repository.TableRepository
	hub    *hub.Hub
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret(testSecret)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.InitDB(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	_, err = database.SeedTables(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tableRepo := repository.NewTableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	h := hub.New()

	r := router.SetupRouter(router.Deps{
		Reservations: services.NewReservationService(reservationRepo, tableRepo, services.ReservationOptions{
			StrictTables: true,
			Notifiers:    []services.Notifier{h},
		}),
		Tables:       services.NewTableService(tableRepo, reservationRepo, h),
		Reconciler:   services.NewReconciler(tableRepo, reservationRepo, h),
		Hub:          h,
		ReserveLimit: middlewares.NewRateLimiter(1000, 1000),
		CORSOrigin:   "*",
	})
	return &testServer{router: r, tables: tableRepo, hub: h}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, bearer string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *testServer) table(t *testing.T, number int) *models.Table {
	t.Helper()
	table, err := s.tables.FindByNumber(context.Background(), number)
	require.NoError(t, err)
	return table
}

func reservationBody(tables ...string) map[string]interface{} {
	return map[string]interface{}{
		"fullName": "Budi Santoso",
		"phone":    "0811122233",
		"email":    "budi@example.com",
		"guests":   4,
		"date":     "2024-06-01",
		"time":     "19:00",
		"tables":   tables,
	}
}

type created struct {
	OrderID     string             `json:"orderId"`
	Reservation models.Reservation `json:"reservation"`
}

func (s *testServer) reserve(t *testing.T, body map[string]interface{}, bearer string) created {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/reserve", body, bearer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out created
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}
