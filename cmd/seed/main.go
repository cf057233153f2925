package main

import (
	"log"
	"time"

	"github.com/hyeonkim/tabling-backend/config"
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/internal/db"
	"github.com/hyeonkim/tabling-backend/pkg/util"
)

// 개발용 데모 데이터 시더.
// 파트너/고객 계정과 예약 가능한 매장, 타임, 오픈 날짜를 생성한다.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	slotRepo := repository.NewSlotRepository(db.GetDB())

	partner, err := seedUser(userRepo, "partner@tabling.dev", "partner123!", "김파트너", model.RolePartner)
	if err != nil {
		log.Fatal("Failed to seed partner:", err)
	}
	if _, err := seedUser(userRepo, "customer@tabling.dev", "customer123!", "이고객", model.RoleCustomer); err != nil {
		log.Fatal("Failed to seed customer:", err)
	}

	// 오늘부터 일주일간 예약 오픈
	dates := make(model.DateList, 0, 7)
	for i := 0; i < 7; i++ {
		dates = append(dates, time.Now().AddDate(0, 0, i).Format(model.DateLayout))
	}

	stores := []struct {
		name    string
		address string
		lat     float64
		lng     float64
	}{
		{"강남불백", "서울 강남구 테헤란로 123", 37.4979, 127.0276},
		{"역삼곱창", "서울 강남구 역삼로 45", 37.5006, 127.0364},
		{"선릉초밥", "서울 강남구 선릉로 77", 37.5045, 127.0489},
	}

	for _, s := range stores {
		exists, err := storeRepo.ExistsByName(s.name)
		if err != nil {
			log.Fatal("Failed to check store:", err)
		}
		if exists {
			log.Printf("Store %s already exists, skipping", s.name)
			continue
		}

		lat, lng := s.lat, s.lng
		store := &model.Store{
			PartnerID: partner.ID,
			Name:      s.name,
			Address:   s.address,
			Latitude:  &lat,
			Longitude: &lng,
			OpenAt:    "09:00",
			CloseAt:   "22:00",
			Dates:     dates,
		}
		if err := storeRepo.Create(store); err != nil {
			log.Fatal("Failed to create store:", err)
		}

		// 점심/저녁 두 타임
		for _, w := range []struct {
			start, end string
		}{
			{"11:30", "13:30"},
			{"18:00", "20:00"},
		} {
			slot := &model.ReservationSlot{
				StoreID:   store.ID,
				PartnerID: partner.ID,
				StartAt:   w.start,
				EndAt:     w.end,
				MinCount:  1,
				MaxCount:  4,
				Count:     20,
			}
			slot.RebuildDates(dates)
			if err := slotRepo.Create(slot); err != nil {
				log.Fatal("Failed to create slot:", err)
			}
		}

		log.Printf("Seeded store %s (id=%d)", store.Name, store.ID)
	}

	log.Println("Seed completed")
}

func seedUser(userRepo repository.UserRepository, email, password, name string, role model.UserRole) (*model.User, error) {
	if user, err := userRepo.FindByEmail(email); err == nil {
		log.Printf("User %s already exists, skipping", email)
		return user, nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        "01012345678",
		Role:         role,
	}
	if err := userRepo.Create(user); err != nil {
		return nil, err
	}
	log.Printf("Seeded %s user %s (id=%d)", role, email, user.ID)
	return user, nil
}
