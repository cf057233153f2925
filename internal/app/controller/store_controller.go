package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/internal/app/service"
	apperrors "github.com/hyeonkim/tabling-backend/internal/errors"
	"github.com/hyeonkim/tabling-backend/internal/middleware"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{
		storeService: storeService,
	}
}

type StoreRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	OpenAt      string   `json:"open_at" binding:"required"`
	CloseAt     string   `json:"close_at" binding:"required"`
}

type StoreDatesRequest struct {
	Dates []string `json:"dates" binding:"required"`
}

type SlotRequest struct {
	StartAt  string `json:"start_at" binding:"required"`
	EndAt    string `json:"end_at" binding:"required"`
	MinCount int    `json:"min_count" binding:"required,min=1"`
	MaxCount int    `json:"max_count" binding:"required,min=1"`
	Count    int    `json:"count" binding:"required,min=1"`
}

type AddSlotsRequest struct {
	Slots []SlotRequest `json:"slots" binding:"required,min=1,dive"`
}

type DeleteSlotsRequest struct {
	SlotIDs []uint `json:"slot_ids" binding:"required,min=1"`
}

type DateClosedRequest struct {
	Date  string `json:"date" binding:"required"`
	Value int    `json:"value"` // -1이면 마감, 그 외 양수면 잔여 인원 수동 지정
}

func (req StoreRequest) toInput() service.StoreInput {
	return service.StoreInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		OpenAt:      req.OpenAt,
		CloseAt:     req.CloseAt,
	}
}

// RegisterStore handles store registration (partner only)
// POST /api/v1/stores
func (ctrl *StoreController) RegisterStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid store registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	store, err := ctrl.storeService.RegisterStore(partnerID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateStoreName):
			apperrors.Conflict(c, apperrors.StoreDuplicateName, err.Error())
		case errors.Is(err, service.ErrCheckStoreHours):
			apperrors.BadRequest(c, apperrors.StoreCheckHours, err.Error())
		default:
			log.Error("Store registration failed", err, map[string]interface{}{
				"partner_id": partnerID,
				"name":       req.Name,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store registered successfully",
		"store":   store,
	})
}

// UpdateStore handles store update (partner only, own store)
// PUT /api/v1/stores/:id
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	store, err := ctrl.storeService.UpdateStore(partnerID, storeID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedPartner):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrDuplicateStoreName):
			apperrors.Conflict(c, apperrors.StoreDuplicateName, err.Error())
		case errors.Is(err, service.ErrCheckStoreHours):
			apperrors.BadRequest(c, apperrors.StoreCheckHours, err.Error())
		default:
			log.Error("Store update failed", err, map[string]interface{}{
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"store":   store,
	})
}

// UpdateStoreDates replaces the store's open reservation dates (partner only)
// PUT /api/v1/stores/:id/dates
func (ctrl *StoreController) UpdateStoreDates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StoreDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	store, err := ctrl.storeService.UpdateStoreDates(partnerID, storeID, req.Dates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedPartner):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrInvalidDate):
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, err.Error())
		default:
			log.Error("Store dates update failed", err, map[string]interface{}{
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store dates updated successfully",
		"store":   store,
	})
}

// DeleteStore soft deletes a store and marks its reservations (partner only)
// DELETE /api/v1/stores/:id
func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.storeService.DeleteStore(partnerID, storeID); err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedPartner):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrStoreAlreadyDeleted):
			apperrors.Conflict(c, apperrors.StoreAlreadyDeleted, err.Error())
		default:
			log.Error("Store deletion failed", err, map[string]interface{}{
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete store")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}

// AddSlots adds reservation slots to a store (partner only)
// POST /api/v1/stores/:id/slots
func (ctrl *StoreController) AddSlots(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	inputs := make([]service.SlotInput, 0, len(req.Slots))
	for _, slot := range req.Slots {
		inputs = append(inputs, service.SlotInput{
			StartAt:  slot.StartAt,
			EndAt:    slot.EndAt,
			MinCount: slot.MinCount,
			MaxCount: slot.MaxCount,
			Count:    slot.Count,
		})
	}

	store, err := ctrl.storeService.AddSlots(partnerID, storeID, inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedPartner):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrCheckSlotTime):
			apperrors.BadRequest(c, apperrors.StoreCheckSlotTime, err.Error())
		default:
			log.Error("Slot creation failed", err, map[string]interface{}{
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create slot")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Slots added successfully",
		"store":   store,
	})
}

// UpdateSlot updates a reservation slot (partner only, no reservations attached)
// PUT /api/v1/stores/slots/:slot_id
func (ctrl *StoreController) UpdateSlot(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	slotID, ok := parseIDParam(c, "slot_id")
	if !ok {
		return
	}

	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	slot, err := ctrl.storeService.UpdateSlot(partnerID, service.SlotInput{
		ID:       slotID,
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
		MinCount: req.MinCount,
		MaxCount: req.MaxCount,
		Count:    req.Count,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			apperrors.NotFound(c, apperrors.StoreSlotNotFound, err.Error())
		case errors.Is(err, service.ErrStillHaveReservation):
			apperrors.Conflict(c, apperrors.StoreStillHaveReservation, err.Error())
		case errors.Is(err, service.ErrCheckSlotTime):
			apperrors.BadRequest(c, apperrors.StoreCheckSlotTime, err.Error())
		default:
			log.Error("Slot update failed", err, map[string]interface{}{
				"slot_id": slotID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update slot")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Slot updated successfully",
		"slot":    slot,
	})
}

// DeleteSlots deletes reservation slots (partner only, no reservations attached)
// DELETE /api/v1/stores/:id/slots
func (ctrl *StoreController) DeleteSlots(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DeleteSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	if err := ctrl.storeService.DeleteSlots(partnerID, storeID, req.SlotIDs); err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedPartner):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrSlotNotFound):
			apperrors.NotFound(c, apperrors.StoreSlotNotFound, err.Error())
		case errors.Is(err, service.ErrStillHaveReservation):
			apperrors.Conflict(c, apperrors.StoreStillHaveReservation, err.Error())
		default:
			log.Error("Slot deletion failed", err, map[string]interface{}{
				"store_id": storeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete slot")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Slots deleted successfully"})
}

// SetDateClosed closes a date or overrides remaining capacity (partner only)
// PATCH /api/v1/stores/slots/:slot_id/closed
func (ctrl *StoreController) SetDateClosed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	slotID, ok := parseIDParam(c, "slot_id")
	if !ok {
		return
	}

	var req DateClosedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	slot, err := ctrl.storeService.SetDateClosed(partnerID, slotID, req.Date, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			apperrors.NotFound(c, apperrors.StoreSlotNotFound, err.Error())
		case errors.Is(err, model.ErrDateNotOpen):
			apperrors.BadRequest(c, apperrors.StoreDateNotOpen, err.Error())
		default:
			log.Error("Date closed update failed", err, map[string]interface{}{
				"slot_id": slotID,
				"date":    req.Date,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update slot")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Slot date updated successfully",
		"slot":    slot,
	})
}

// GetStore returns store detail with its slots
// GET /api/v1/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	store, err := ctrl.storeService.GetStore(storeID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, err.Error())
			return
		}
		log.Error("Failed to get store", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get store")
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": store})
}

// ListStores returns stores with optional name search and rating sort
// GET /api/v1/stores?search=&sort=rating
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.StoreFilter{
		Search:       c.Query("search"),
		SortByRating: c.Query("sort") == "rating",
	}

	stores, err := ctrl.storeService.ListStores(filter)
	if err != nil {
		log.Error("Failed to list stores", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// NearbyStores returns stores sorted by distance from the given coordinates
// GET /api/v1/stores/nearby?lat=&lng=&limit=
func (ctrl *StoreController) NearbyStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "위도/경도를 확인해주세요")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	stores, err := ctrl.storeService.NearbyStores(lat, lng, limit)
	if err != nil {
		log.Error("Failed to search nearby stores", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// parseIDParam parses a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
		return 0, false
	}
	return uint(id), true
}
