package service

import (
	"errors"
	"fmt"

	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound       = errors.New("리뷰가 존재하지 않습니다")
	ErrVisitRequired        = errors.New("방문 확인된 예약만 리뷰를 작성할 수 있습니다")
	ErrAlreadyCreatedReview = errors.New("이미 리뷰를 작성한 예약입니다")
	ErrUnmatchedWriter      = errors.New("리뷰 작성자 정보가 일치하지 않습니다")
)

type CreateReviewInput struct {
	ReservationID uint
	Rating        float64
	Comment       string
}

type UpdateReviewInput struct {
	ReviewID uint
	Rating   float64
	Comment  string
}

type ReviewService interface {
	CreateReview(customerID uint, input CreateReviewInput) (*model.Review, error)
	UpdateReview(customerID uint, input UpdateReviewInput) (*model.Review, error)
	DeleteByCustomer(customerID, reviewID uint) error
	DeleteByPartner(partnerID, reviewID uint) error
	ListByCustomer(customerID uint, offset, limit int) ([]model.Review, int64, error)
	ListByPartnerStore(partnerID, storeID uint, offset, limit int) ([]model.Review, int64, error)
}

type reviewService struct {
	reviewRepo      *repository.ReviewRepository
	reservationRepo repository.ReservationRepository
	db              *gorm.DB
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	reservationRepo repository.ReservationRepository,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo:      reviewRepo,
		reservationRepo: reservationRepo,
		db:              db,
	}
}

// CreateReview 리뷰 작성.
// 방문 확인까지 마친 본인 예약에만, 예약당 한 번 작성할 수 있다.
// 리뷰 저장과 매장 별점 집계 반영은 같은 트랜잭션에서 처리한다
func (s *reviewService) CreateReview(customerID uint, input CreateReviewInput) (*model.Review, error) {
	reservation, err := s.reservationRepo.FindByIDAndCustomerID(input.ReservationID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if !reservation.Visited {
		return nil, ErrVisitRequired
	}

	if input.Rating > model.MaxRating {
		return nil, fmt.Errorf("%w [입력 별점 : %.1f]", model.ErrOverRatingLimit, input.Rating)
	}

	exists, err := s.reviewRepo.ExistsByCustomerAndReservation(customerID, input.ReservationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyCreatedReview
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	review := &model.Review{
		CustomerID:    customerID,
		StoreID:       reservation.StoreID,
		ReservationID: input.ReservationID,
		Rating:        input.Rating,
		Comment:       input.Comment,
	}

	store, err := s.applyToStore(tx, reservation.StoreID, func(store *model.Store) error {
		return store.ApplyRating(input.Rating)
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	review.PartnerID = store.PartnerID

	if err := tx.Create(review).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":      review.ID,
		"reservation_id": input.ReservationID,
		"store_id":       review.StoreID,
		"rating":         input.Rating,
	})

	return review, nil
}

// UpdateReview 리뷰 수정 (작성자 본인만).
// 매장 집계에서 기존 별점을 새 별점으로 교체한다 (리뷰 개수 불변)
func (s *reviewService) UpdateReview(customerID uint, input UpdateReviewInput) (*model.Review, error) {
	review, err := s.reviewRepo.FindByIDAndCustomerID(input.ReviewID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnmatchedWriter
		}
		return nil, err
	}

	if input.Rating > model.MaxRating {
		return nil, fmt.Errorf("%w [입력 별점 : %.1f]", model.ErrOverRatingLimit, input.Rating)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 동시 수정이 끼어들면 기존 별점이 바뀌어 있을 수 있으므로
	// 행을 잠그고 다시 읽은 값으로 차액을 계산한다
	if err := lockForUpdate(tx).First(review, review.ID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	oldRating := review.Rating
	if _, err := s.applyToStore(tx, review.StoreID, func(store *model.Store) error {
		return store.ReplaceRating(oldRating, input.Rating)
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	review.Rating = input.Rating
	review.Comment = input.Comment
	if err := tx.Save(review).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteByCustomer 작성자 본인의 리뷰 삭제
func (s *reviewService) DeleteByCustomer(customerID, reviewID uint) error {
	review, err := s.reviewRepo.FindByIDAndCustomerID(reviewID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnmatchedWriter
		}
		return err
	}
	return s.deleteReview(review)
}

// DeleteByPartner 본인 매장에 등록된 리뷰 삭제 (파트너 권한)
func (s *reviewService) DeleteByPartner(partnerID, reviewID uint) error {
	review, err := s.reviewRepo.FindByIDAndPartnerID(reviewID, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return s.deleteReview(review)
}

// ListByCustomer 본인이 작성한 리뷰 목록
func (s *reviewService) ListByCustomer(customerID uint, offset, limit int) ([]model.Review, int64, error) {
	return s.reviewRepo.FindByCustomerID(customerID, offset, limit)
}

// ListByPartnerStore 본인 매장에 등록된 리뷰 목록
func (s *reviewService) ListByPartnerStore(partnerID, storeID uint, offset, limit int) ([]model.Review, int64, error) {
	return s.reviewRepo.FindByPartnerAndStore(partnerID, storeID, offset, limit)
}

// deleteReview 리뷰 하드 삭제와 매장 별점 집계 차감을 같은 트랜잭션에서 처리
func (s *reviewService) deleteReview(review *model.Review) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 집계에서 차감할 별점은 잠근 뒤 다시 읽은 현재 값이어야 한다
	if err := lockForUpdate(tx).First(review, review.ID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if _, err := s.applyToStore(tx, review.StoreID, func(store *model.Store) error {
		store.RemoveRating(review.Rating)
		return nil
	}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(review).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": review.ID,
		"store_id":  review.StoreID,
	})

	return nil
}

// applyToStore 매장 행을 잠그고 별점 집계를 갱신한 뒤 저장.
// 리뷰가 참조하는 매장이 소프트 삭제된 경우에도 집계는 유지되어야 하므로 Unscoped로 조회한다
func (s *reviewService) applyToStore(tx *gorm.DB, storeID uint, apply func(*model.Store) error) (*model.Store, error) {
	var store model.Store
	if err := lockForUpdate(tx).Unscoped().Where("id = ?", storeID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if err := apply(&store); err != nil {
		return nil, err
	}

	if err := tx.Unscoped().Save(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}
