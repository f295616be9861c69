package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	createBookingHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/create_booking"
	evaluatePolicyHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/evaluate_policy"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/get_booking"
	getBookingHistoryHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/get_booking_history"
	getBusinessBookingsHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/get_business_bookings"
	getBusinessRulesHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/get_business_rules"
	getUserBookingsHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/get_user_bookings"
	transitionBookingHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/transition_booking"
	updateBusinessRulesHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/update_business_rules"
	validateBookingHandler "github.com/m04kA/SMC-ReservationEngine/internal/api/handlers/validate_booking"
	"github.com/m04kA/SMC-ReservationEngine/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationEngine/internal/config"
	bookingRepo "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/booking"
	constraintRepo "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/constraint"
	operationRepo "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/operation"
	policyRepo "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/policy"
	rulesetRepo "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	directoryServiceClient "github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	bookingsService "github.com/m04kA/SMC-ReservationEngine/internal/service/bookings"
	rulesService "github.com/m04kA/SMC-ReservationEngine/internal/service/rules"
	createBookingUC "github.com/m04kA/SMC-ReservationEngine/internal/usecase/create_booking"
	evaluatePolicyUC "github.com/m04kA/SMC-ReservationEngine/internal/usecase/evaluate_policy"
	getAvailableSlotsUC "github.com/m04kA/SMC-ReservationEngine/internal/usecase/get_available_slots"
	matchResourceUC "github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	transitionBookingUC "github.com/m04kA/SMC-ReservationEngine/internal/usecase/transition_booking"
	validateBookingUC "github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
	"github.com/m04kA/SMC-ReservationEngine/pkg/logger"
	"github.com/m04kA/SMC-ReservationEngine/pkg/metrics"
	"github.com/m04kA/SMC-ReservationEngine/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ReservationEngine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента DirectoryService
	directoryClient := directoryServiceClient.NewClient(
		cfg.DirectoryService.URL,
		time.Duration(cfg.DirectoryService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (DirectoryService=%s timeout=%ds)",
		cfg.DirectoryService.URL, cfg.DirectoryService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository    *bookingRepo.Repository
		rulesetRepository    *rulesetRepo.Repository
		constraintRepository *constraintRepo.Repository
		policyRepository     *policyRepo.Repository
		operationRepository  *operationRepo.Repository
		txMgr                *txmanager.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		rulesetRepository = rulesetRepo.NewRepository(wrappedDB)
		constraintRepository = constraintRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		operationRepository = operationRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		rulesetRepository = rulesetRepo.NewRepository(db)
		constraintRepository = constraintRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		operationRepository = operationRepo.NewRepository(db)
		txMgr = txmanager.NewTransactionManager(dbtx.SQLBeginner{DB: db})
	}

	timeProvider := &validateBookingUC.RealTimeProvider{}

	// Инициализируем use cases
	validateBookingUseCase := validateBookingUC.NewUseCase(
		bookingRepository,
		rulesetRepository,
		constraintRepository,
		directoryClient,
		timeProvider,
		log,
	)

	matchResourceUseCase := matchResourceUC.NewUseCase(
		bookingRepository,
		directoryClient,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		rulesetRepository,
		directoryClient,
		timeProvider,
		log,
	)

	evaluatePolicyUseCase := evaluatePolicyUC.NewUseCase(
		bookingRepository,
		policyRepository,
		timeProvider,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		rulesetRepository,
		operationRepository,
		directoryClient,
		validateBookingUseCase,
		matchResourceUseCase,
		txMgr,
		timeProvider,
		log,
	)

	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		bookingRepository,
		rulesetRepository,
		operationRepository,
		evaluatePolicyUseCase,
		validateBookingUseCase,
		matchResourceUseCase,
		txMgr,
		timeProvider,
		log,
	)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		operationRepository,
		directoryClient,
		log,
	)
	rulesSvc := rulesService.NewService(
		rulesetRepository,
		constraintRepository,
		policyRepository,
		txMgr,
		directoryClient,
		timeProvider,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	validateBooking := validateBookingHandler.NewHandler(validateBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	transitionBooking := transitionBookingHandler.NewHandler(transitionBookingUseCase, log)
	evaluatePolicy := evaluatePolicyHandler.NewHandler(evaluatePolicyUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBookingHistory := getBookingHistoryHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getBusinessBookings := getBusinessBookingsHandler.NewHandler(bookingSvc, log)
	getBusinessRules := getBusinessRulesHandler.NewHandler(rulesSvc, log)
	updateBusinessRules := updateBusinessRulesHandler.NewHandler(rulesSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Сетка доступных слотов на день
	api.HandleFunc("/businesses/{businessId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующие правила бронирования бизнеса
	api.HandleFunc("/businesses/{businessId}/rules",
		getBusinessRules.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Сухая проверка бронирования без создания
	protected.HandleFunc("/bookings/validate", validateBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Журнал операций и история статусов
	protected.HandleFunc("/bookings/{bookingId}/history", getBookingHistory.Handle).Methods(http.MethodGet)

	// Операции жизненного цикла (confirm / cancel / reschedule / ...)
	protected.HandleFunc("/bookings/{bookingId}/transition", transitionBooking.Handle).Methods(http.MethodPost)

	// Сухой расчёт решения политики
	protected.HandleFunc("/bookings/{bookingId}/policy-evaluation", evaluatePolicy.Handle).Methods(http.MethodPost)

	// Бронирования клиента
	protected.HandleFunc("/customers/{customerId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом (для менеджеров) ---
	// Список бронирований бизнеса
	protected.HandleFunc("/businesses/{businessId}/bookings", getBusinessBookings.Handle).Methods(http.MethodGet)

	// Обновление правил бронирования
	protected.HandleFunc("/businesses/{businessId}/rules", updateBusinessRules.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
