package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/booking"
	"github.com/iliyamo/movie-seat-booking/internal/catalog"
	"github.com/iliyamo/movie-seat-booking/internal/config"
	"github.com/iliyamo/movie-seat-booking/internal/database"
	"github.com/iliyamo/movie-seat-booking/internal/handler"
	"github.com/iliyamo/movie-seat-booking/internal/hold"
	"github.com/iliyamo/movie-seat-booking/internal/ledger"
	"github.com/iliyamo/movie-seat-booking/internal/middleware"
	"github.com/iliyamo/movie-seat-booking/internal/payment"
	"github.com/iliyamo/movie-seat-booking/internal/queue"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
	"github.com/iliyamo/movie-seat-booking/internal/router"
	queue_publisher "github.com/iliyamo/movie-seat-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when unreachable, caching and rate limiting
	// degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	cat := catalog.New()
	led := ledger.New()
	seatRepo := repository.NewSeatRepo(db)
	if err := loadShows(cat, led, seatRepo); err != nil {
		log.Fatalf("load shows: %v", err)
	}

	holds := hold.NewManager(led, cfg.HoldTTL, cfg.HoldMaxSeats)
	charger := payment.NewGateway(cfg.PaymentURL, cfg.PaymentTimeout)
	bookingRepo := repository.NewBookingRepo(db)
	orc := booking.NewOrchestrator(led, holds, charger, bookingRepo,
		queue_publisher.PublishBookingConfirmed, cfg.PaymentTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := hold.NewSweeper(led, cfg.SweepInterval)
	go sweeper.Start(ctx)

	// Background consumer appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	h := handler.NewReservationHandler(led, holds, orc, cat, bookingRepo)
	router.RegisterReservation(e, h, cfg.JWTSecret, cacheMW, limitMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hold_ttl=%s)", addr, cfg.Env, cfg.HoldTTL)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// loadShows rebuilds the in-memory catalog and ledger from the seat
// rows in MySQL.  When no show exists yet (fresh database), a default
// show with the standard hall layout is seeded so the service is
// usable out of the box.
func loadShows(cat *catalog.Catalog, led *ledger.Ledger, seats *repository.SeatRepo) error {
	ctx := context.Background()
	ids, err := seats.ListShowIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		const showID = 1
		layout := catalog.BuildSeats(showID, catalog.DefaultLayout)
		if err := seats.CreateBulk(ctx, layout); err != nil {
			return err
		}
		ids = []uint64{showID}
		log.Printf("seeded show %d with %d seats", showID, len(layout))
	}
	for _, id := range ids {
		seatList, err := seats.ListByShow(ctx, id)
		if err != nil {
			return err
		}
		cat.Register(id, seatList)
		if err := led.RegisterShow(id, seatList); err != nil {
			return err
		}
	}
	log.Printf("loaded %d show(s)", len(ids))
	return nil
}
