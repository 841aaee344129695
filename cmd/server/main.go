package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/config"
	"github.com/kofiadjei/robolab-api/internal/database"
	"github.com/kofiadjei/robolab-api/internal/handler"
	"github.com/kofiadjei/robolab-api/internal/payment"
	"github.com/kofiadjei/robolab-api/internal/queue"
	"github.com/kofiadjei/robolab-api/internal/repository"
	"github.com/kofiadjei/robolab-api/internal/router"
	queuepublisher "github.com/kofiadjei/robolab-api/internal/service"
	"github.com/kofiadjei/robolab-api/internal/workflow"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	regions := repository.NewRegionRepo(db)
	labs := repository.NewLabRepo(db)
	companies := repository.NewCompanyRepo(db)
	departments := repository.NewDepartmentRepo(db)
	employees := repository.NewEmployeeRepo(db)
	faculties := repository.NewFacultyRepo(db)
	appts := repository.NewAppointmentRepo(db)
	books := repository.NewBookRepo(db)
	loans := repository.NewLoanRepo(db)
	attendance := repository.NewAttendanceRepo(db)

	gateway := payment.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret)
	wf := workflow.NewService(appts, regions, labs, faculties, users, gateway,
		queuepublisher.PublishAppointmentApproved)

	// Background consumer writes approval events to logs/appointments.log
	// and keeps reconnecting across broker restarts.
	go func() {
		if err := queue.StartApprovalConsumer(); err != nil {
			log.Printf("approval consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterAPI(e, router.Handlers{
		Auth:        authHandler,
		Appointment: handler.NewAppointmentHandler(wf, appts),
		Region:      handler.NewRegionHandler(regions),
		Lab:         handler.NewLabHandler(labs, regions),
		Org:         handler.NewOrgHandler(companies, departments, employees, faculties),
		Book:        handler.NewBookHandler(books, loans),
		Attendance:  handler.NewAttendanceHandler(attendance),
	}, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
