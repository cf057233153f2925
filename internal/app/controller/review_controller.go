package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/service"
	apperrors "github.com/hyeonkim/tabling-backend/internal/errors"
	"github.com/hyeonkim/tabling-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	ReservationID uint    `json:"reservation_id" binding:"required"`
	Rating        float64 `json:"rating" binding:"required,min=0,max=5"`
	Comment       string  `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  float64 `json:"rating" binding:"required,min=0,max=5"`
	Comment string  `json:"comment"`
}

// CreateReview handles review creation for a visited reservation
// POST /api/v1/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	review, err := ctrl.reviewService.CreateReview(customerID, service.CreateReviewInput{
		ReservationID: req.ReservationID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			apperrors.NotFound(c, apperrors.ReservationNotFound, err.Error())
		case errors.Is(err, service.ErrVisitRequired):
			apperrors.Conflict(c, apperrors.ReviewVisitRequired, err.Error())
		case errors.Is(err, model.ErrOverRatingLimit):
			apperrors.BadRequest(c, apperrors.ReviewOverRatingLimit, err.Error())
		case errors.Is(err, service.ErrAlreadyCreatedReview):
			apperrors.Conflict(c, apperrors.ReviewAlreadyCreated, err.Error())
		default:
			log.Error("Review creation failed", err, map[string]interface{}{
				"customer_id":    customerID,
				"reservation_id": req.ReservationID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create review")
		}
		return
	}

	log.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
		"store_id":  review.StoreID,
		"rating":    review.Rating,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"review":  review,
	})
}

// UpdateReview handles review update by its author
// PUT /api/v1/reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, _ := middleware.GetUserID(c)
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	review, err := ctrl.reviewService.UpdateReview(customerID, service.UpdateReviewInput{
		ReviewID: reviewID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedWriter):
			apperrors.Forbidden(c, err.Error())
		case errors.Is(err, model.ErrOverRatingLimit):
			apperrors.BadRequest(c, apperrors.ReviewOverRatingLimit, err.Error())
		default:
			log.Error("Review update failed", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated successfully",
		"review":  review,
	})
}

// DeleteReview handles review deletion by its author (customer)
// DELETE /api/v1/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, _ := middleware.GetUserID(c)
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reviewService.DeleteByCustomer(customerID, reviewID); err != nil {
		switch {
		case errors.Is(err, service.ErrUnmatchedWriter):
			apperrors.Forbidden(c, err.Error())
		default:
			log.Error("Review deletion failed", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// DeleteStoreReview handles review deletion by the store's partner
// DELETE /api/v1/stores/reviews/:id
func (ctrl *ReviewController) DeleteStoreReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reviewService.DeleteByPartner(partnerID, reviewID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, err.Error())
		default:
			log.Error("Review deletion failed", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// ListMyReviews returns the customer's own reviews
// GET /api/v1/reviews/me?page=&page_size=
func (ctrl *ReviewController) ListMyReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	page, pageSize := parsePagination(c)

	reviews, total, err := ctrl.reviewService.ListByCustomer(customerID, (page-1)*pageSize, pageSize)
	if err != nil {
		log.Error("Failed to list reviews", err, map[string]interface{}{
			"customer_id": customerID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get review")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":   reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListStoreReviews returns reviews on the partner's store
// GET /api/v1/stores/:id/reviews?page=&page_size=
func (ctrl *ReviewController) ListStoreReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	partnerID, _ := middleware.GetUserID(c)
	storeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, pageSize := parsePagination(c)

	reviews, total, err := ctrl.reviewService.ListByPartnerStore(partnerID, storeID, (page-1)*pageSize, pageSize)
	if err != nil {
		log.Error("Failed to list store reviews", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get review")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":   reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
