package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hyeonkim/tabling-backend/config"
	"github.com/hyeonkim/tabling-backend/internal/app/controller"
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/middleware"
)

type Router struct {
	authController        *controller.AuthController
	storeController       *controller.StoreController
	reservationController *controller.ReservationController
	reviewController      *controller.ReviewController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	storeController *controller.StoreController,
	reservationController *controller.ReservationController,
	reviewController *controller.ReviewController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		storeController:       storeController,
		reservationController: reservationController,
		reviewController:      reviewController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TABLING API is running",
		})
	})

	customerOnly := r.authMiddleware.RequireRole(string(model.RoleCustomer))
	partnerOnly := r.authMiddleware.RequireRole(string(model.RolePartner))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		stores := v1.Group("/stores")
		{
			// 비로그인도 조회 가능, 토큰이 있으면 로그에 사용자 정보 포함
			stores.GET("", r.authMiddleware.OptionalAuthenticate(), r.storeController.ListStores)
			stores.GET("/nearby", r.authMiddleware.OptionalAuthenticate(), r.storeController.NearbyStores)
			stores.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.storeController.GetStore)

			// 파트너 전용 매장 관리
			stores.POST("",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.RegisterStore,
			)
			stores.PUT("/:id",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.UpdateStore,
			)
			stores.PUT("/:id/dates",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.UpdateStoreDates,
			)
			stores.DELETE("/:id",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.DeleteStore,
			)
			stores.POST("/:id/slots",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.AddSlots,
			)
			stores.DELETE("/:id/slots",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.DeleteSlots,
			)
			stores.PUT("/slots/:slot_id",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.UpdateSlot,
			)
			stores.PATCH("/slots/:slot_id/closed",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.storeController.SetDateClosed,
			)

			// 파트너 전용 예약/리뷰 조회 및 관리
			stores.GET("/:id/reservations",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.reservationController.ListStoreReservations,
			)
			stores.GET("/:id/reviews",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.reviewController.ListStoreReviews,
			)
			stores.DELETE("/reviews/:id",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.reviewController.DeleteStoreReview,
			)
		}

		reservations := v1.Group("/reservations")
		{
			reservations.POST("",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reservationController.MakeReservation,
			)
			reservations.GET("/me",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reservationController.ListMyReservations,
			)
			reservations.DELETE("/:id",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reservationController.Cancel,
			)
			reservations.PATCH("/:id/visit",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reservationController.RecordVisit,
			)
			reservations.PATCH("/:id/status",
				r.authMiddleware.Authenticate(), partnerOnly,
				r.reservationController.ChangeStatus,
			)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reviewController.CreateReview,
			)
			reviews.GET("/me",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reviewController.ListMyReviews,
			)
			reviews.PUT("/:id",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reviewController.UpdateReview,
			)
			reviews.DELETE("/:id",
				r.authMiddleware.Authenticate(), customerOnly,
				r.reviewController.DeleteReview,
			)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
