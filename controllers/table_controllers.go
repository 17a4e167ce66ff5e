package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

// publicStatuses is what guests see when no filter is given.
var publicStatuses = []models.TableStatus{models.TableAvailable, models.TableReserved}

type TableController struct {
	tables     services.TableService
	reconciler *services.Reconciler
}

func NewTableController(tables services.TableService, reconciler *services.Reconciler) *TableController {
	return &TableController{tables: tables, reconciler: reconciler}
}

// GetTables -> GET /tables, optionally ?status=available,maintenance
func (tc *TableController) GetTables(c *gin.Context) {
	statuses := publicStatuses
	if raw := c.Query("status"); raw != "" {
		statuses = services.ParseStatuses(raw)
	}
	tc.list(c, statuses)
}

// GetAllTables -> GET /admin/tables, every status unless filtered
func (tc *TableController) GetAllTables(c *gin.Context) {
	tc.list(c, services.ParseStatuses(c.Query("status")))
}

func (tc *TableController) list(c *gin.Context, statuses []models.TableStatus) {
	tables, err := tc.tables.ListTables(c.Request.Context(), statuses)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> POST /admin/tables
func (tc *TableController) CreateTable(c *gin.Context) {
	var input services.CreateTableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	table, err := tc.tables.CreateTable(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateTableStatus -> PUT /admin/tables/:tableNumber/status
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var body struct {
		Status models.TableStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	table, err := tc.tables.UpdateTableStatus(c.Request.Context(), c.Param("tableNumber"), body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> DELETE /admin/tables/:tableNumber
func (tc *TableController) DeleteTable(c *gin.Context) {
	number := c.Param("tableNumber")
	if err := tc.tables.DeleteTable(c.Request.Context(), number); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"tableNumber": number})
}

// SyncReservedTables -> POST /reserved-tables/sync
func (tc *TableController) SyncReservedTables(c *gin.Context) {
	var body struct {
		ReservedTableNumbers []int `json:"reservedTableNumbers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	result, err := tc.reconciler.Reconcile(c.Request.Context(), body.ReservedTableNumbers)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table statuses synchronized", result)
}

// ReconcileTables -> POST /admin/tables/reconcile, derives the set from active reservations
func (tc *TableController) ReconcileTables(c *gin.Context) {
	result, err := tc.reconciler.ReconcileFromReservations(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table statuses synchronized", result)
}
