package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/service"
	apperrors "github.com/hyeonkim/tabling-backend/internal/errors"
	"github.com/hyeonkim/tabling-backend/internal/middleware"
)

type ReservationController struct {
	reservationService service.ReservationService
}

func NewReservationController(reservationService service.ReservationService) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
	}
}

type MakeReservationRequest struct {
	SlotID    uint   `json:"slot_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	HeadCount int    `json:"head_count" binding:"required,min=1"`
	Phone     string `json:"phone" binding:"required"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// MakeReservation handles a customer's reservation request
// POST /api/v1/reservations
func (ctrl *ReservationController) MakeReservation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	var req MakeReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reservation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	reservation, err := ctrl.reservationService.MakeReservation(customerID, service.MakeReservationInput{
		SlotID:    req.SlotID,
		Date:      req.Date,
		HeadCount: req.HeadCount,
		Phone:     req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			apperrors.NotFound(c, apperrors.StoreSlotNotFound, err.Error())
		case errors.Is(err, service.ErrStoreAlreadyDeleted):
			apperrors.Conflict(c, apperrors.StoreAlreadyDeleted, err.Error())
		case errors.Is(err, service.ErrCannotReserveDate):
			apperrors.BadRequest(c, apperrors.ReservationCannotReserveDate, err.Error())
		case errors.Is(err, service.ErrDuplicateReservation):
			apperrors.Conflict(c, apperrors.ReservationDuplicate, err.Error())
		case errors.Is(err, service.ErrBelowMinCapacity):
			apperrors.BadRequest(c, apperrors.ReservationBelowMinCapacity, err.Error())
		case errors.Is(err, service.ErrOverMaxCapacity):
			apperrors.BadRequest(c, apperrors.ReservationOverMaxCapacity, err.Error())
		case errors.Is(err, model.ErrReservationClosed):
			apperrors.Conflict(c, apperrors.ReservationClosed, err.Error())
		default:
			log.Error("Reservation failed", err, map[string]interface{}{
				"customer_id": customerID,
				"slot_id":     req.SlotID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create reservation")
		}
		return
	}

	log.Info("Reservation created", map[string]interface{}{
		"reservation_id": reservation.ID,
		"customer_id":    customerID,
		"slot_id":        req.SlotID,
		"date":           req.Date,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Reservation created successfully",
		"reservation": reservation,
	})
}

// ChangeStatus approves or rejects a pending reservation (partner only)
// PATCH /api/v1/reservations/:id/status
func (ctrl *ReservationController) ChangeStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	reservationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "예약 상태는 APPROVED 또는 REJECTED만 가능합니다")
		return
	}

	reservation, err := ctrl.reservationService.ChangeStatus(partnerID, reservationID, model.ReservationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			apperrors.NotFound(c, apperrors.ReservationNotFound, err.Error())
		case errors.Is(err, service.ErrUnmatchedPartner):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrAlreadyDecided):
			apperrors.Conflict(c, apperrors.ReservationAlreadyDecided, err.Error())
		case errors.Is(err, model.ErrReservationClosed):
			apperrors.Conflict(c, apperrors.ReservationClosed, err.Error())
		case errors.Is(err, model.ErrOverCapacity):
			apperrors.Conflict(c, apperrors.ReservationOverCapacity, err.Error())
		default:
			log.Error("Reservation status change failed", err, map[string]interface{}{
				"reservation_id": reservationID,
				"status":         req.Status,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update reservation")
		}
		return
	}

	log.Info("Reservation status changed", map[string]interface{}{
		"reservation_id": reservationID,
		"status":         reservation.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation status updated successfully",
		"reservation": reservation,
	})
}

// Cancel cancels the customer's own reservation
// DELETE /api/v1/reservations/:id
func (ctrl *ReservationController) Cancel(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, _ := middleware.GetUserID(c)
	reservationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := ctrl.reservationService.Cancel(customerID, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedCustomer):
			apperrors.Forbidden(c, err.Error())
		default:
			log.Error("Reservation cancel failed", err, map[string]interface{}{
				"reservation_id": reservationID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete reservation")
		}
		return
	}

	log.Info("Reservation canceled", map[string]interface{}{
		"reservation_id": reservationID,
		"customer_id":    customerID,
		"status":         reservation.Status,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Reservation canceled successfully"})
}

// RecordVisit marks the reservation as visited (kiosk check-in)
// PATCH /api/v1/reservations/:id/visit
func (ctrl *ReservationController) RecordVisit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, _ := middleware.GetUserID(c)
	reservationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := ctrl.reservationService.RecordVisit(customerID, reservationID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedCustomer):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrNotDecidedYet):
			apperrors.Conflict(c, apperrors.ReservationNotDecided, err.Error())
		case errors.Is(err, service.ErrNotTodayReservation):
			apperrors.BadRequest(c, apperrors.ReservationNotToday, err.Error())
		case errors.Is(err, service.ErrCannotCheckYet):
			apperrors.Conflict(c, apperrors.ReservationTooEarly, err.Error())
		case errors.Is(err, service.ErrOverReservationTime):
			apperrors.Conflict(c, apperrors.ReservationTimePassed, err.Error())
		default:
			log.Error("Visit check failed", err, map[string]interface{}{
				"reservation_id": reservationID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update reservation")
		}
		return
	}

	log.Info("Visit recorded", map[string]interface{}{
		"reservation_id": reservationID,
		"customer_id":    customerID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":     "Visit recorded successfully",
		"reservation": reservation,
	})
}

// ListMyReservations returns the customer's reservations, optionally per store
// GET /api/v1/reservations/me?store_id=&page=&page_size=
func (ctrl *ReservationController) ListMyReservations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	page, pageSize := parsePagination(c)

	var (
		reservations []model.Reservation
		total        int64
		err          error
	)
	if raw := c.Query("store_id"); raw != "" {
		storeID, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
			return
		}
		reservations, total, err = ctrl.reservationService.SearchByCustomerAndStore(customerID, uint(storeID), page, pageSize)
	} else {
		reservations, total, err = ctrl.reservationService.SearchByCustomer(customerID, page, pageSize)
	}
	if err != nil {
		log.Error("Failed to list reservations", err, map[string]interface{}{
			"customer_id": customerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get reservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

// ListStoreReservations returns a store's reservations for a date (partner only)
// GET /api/v1/stores/:id/reservations?date=&page=&page_size=
func (ctrl *ReservationController) ListStoreReservations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(model.DateLayout)
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "날짜 형식을 확인해주세요")
		return
	}

	page, pageSize := parsePagination(c)

	reservations, total, err := ctrl.reservationService.SearchByPartner(partnerID, storeID, date, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrUnmatchedPartner) {
			apperrors.Forbidden(c, err.Error())
			return
		}
		log.Error("Failed to list store reservations", err, map[string]interface{}{
			"store_id": storeID,
			"date":     date,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get reservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"total":        total,
		"date":         date,
		"page":         page,
		"page_size":    pageSize,
	})
}

// parsePagination parses page/page_size query params with defaults
func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
