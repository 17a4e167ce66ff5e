package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type ReservationController struct {
	service services.ReservationService
}

func NewReservationController(service services.ReservationService) *ReservationController {
	return &ReservationController{service: service}
}

// CreateReservation -> POST /reserve
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var input services.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	// the token identity wins over whatever the body claims
	if userID, _, ok := middlewares.CurrentUser(c); ok {
		input.UserID = userID
	}

	reservation, err := rc.service.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", gin.H{
		"orderId":     reservation.OrderID,
		"reservation": reservation,
	})
}

// GetReservation -> GET /reservation/:orderId
func (rc *ReservationController) GetReservation(c *gin.Context) {
	reservation, ok := rc.loadOwned(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// CancelReservation -> DELETE /reservation/:orderId
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	if _, ok := rc.loadOwned(c); !ok {
		return
	}

	reservation, err := rc.service.Cancel(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled successfully", gin.H{
		"orderId": reservation.OrderID,
		"status":  reservation.Status,
	})
}

// UpdateReservation -> PUT/PATCH /reservation/:orderId
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	if _, ok := rc.loadOwned(c); !ok {
		return
	}

	var changes services.UpdateReservationInput
	if err := c.ShouldBindJSON(&changes); err != nil {
		badRequest(c, err)
		return
	}

	// only an admin may move a reservation to another account
	if _, role, _ := middlewares.CurrentUser(c); role != middlewares.RoleAdmin {
		changes.UserID = nil
	}

	reservation, err := rc.service.Update(c.Request.Context(), c.Param("orderId"), changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation updated successfully", gin.H{
		"reservation": reservation,
	})
}

// GetUserReservations -> GET /user/:userId/reservations
func (rc *ReservationController) GetUserReservations(c *gin.Context) {
	userID := c.Param("userId")
	caller, role, _ := middlewares.CurrentUser(c)
	if caller != userID && role != middlewares.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	reservations, err := rc.service.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// GetAllReservations -> GET /admin/reservations
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	reservations, err := rc.service.List(c.Request.Context(), "")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// CompleteReservation -> POST /admin/reservations/:orderId/complete
func (rc *ReservationController) CompleteReservation(c *gin.Context) {
	reservation, err := rc.service.Complete(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation completed", reservation)
}

// GetReservedTables -> GET /reserved-tables?date=&time=
func (rc *ReservationController) GetReservedTables(c *gin.Context) {
	tables, err := rc.service.ReservedTables(c.Request.Context(), c.Query("date"), c.Query("time"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reserved tables", tables)
}

// loadOwned fetches the reservation named in the path and checks that the
// caller may act on it. Reservations without an owner are open to anyone
// holding the orderId.
func (rc *ReservationController) loadOwned(c *gin.Context) (*models.Reservation, bool) {
	reservation, err := rc.service.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if reservation.UserID == "" {
		return reservation, true
	}

	userID, role, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errNoAuth)
		return nil, false
	}
	if role != middlewares.RoleAdmin && userID != reservation.UserID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return nil, false
	}
	return reservation, true
}

var errNoAuth = errors.New("authentication required")
