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

	blockSlotHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/block_slot"
	cancelAppointmentHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/create_appointment"
	generateSlotsHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/generate_slots"
	getAppointmentHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_appointment"
	getAppointmentByCodeHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_appointment_by_code"
	getAppointmentHistoryHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_appointment_history"
	getAvailableSlotsHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_available_slots"
	getClinicAppointmentsHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_clinic_appointments"
	getNextAvailableHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_next_available"
	getScheduleConfigHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_schedule_config"
	getUserAppointmentsHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/get_user_appointments"
	rescheduleAppointmentHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/reschedule_appointment"
	unblockSlotHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/unblock_slot"
	updateAppointmentStatusHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/update_appointment_status"
	updateScheduleConfigHandler "github.com/findmyvet/FMV-BookingService/internal/api/handlers/update_schedule_config"
	"github.com/findmyvet/FMV-BookingService/internal/api/middleware"
	"github.com/findmyvet/FMV-BookingService/internal/config"
	apptRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/appointment"
	historyRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/history"
	configRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/scheduleconfig"
	slotRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/slot"
	clinicServiceClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	petServiceClient "github.com/findmyvet/FMV-BookingService/internal/integrations/petservice"
	appointmentsService "github.com/findmyvet/FMV-BookingService/internal/service/appointments"
	scheduleConfigService "github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig"
	slotsService "github.com/findmyvet/FMV-BookingService/internal/service/slots"
	createAppointmentUC "github.com/findmyvet/FMV-BookingService/internal/usecase/create_appointment"
	generateSlotsUC "github.com/findmyvet/FMV-BookingService/internal/usecase/generate_slots"
	getAvailableSlotsUC "github.com/findmyvet/FMV-BookingService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/findmyvet/FMV-BookingService/internal/usecase/reschedule_appointment"
	"github.com/findmyvet/FMV-BookingService/pkg/dbmetrics"
	"github.com/findmyvet/FMV-BookingService/pkg/logger"
	"github.com/findmyvet/FMV-BookingService/pkg/metrics"
	"github.com/findmyvet/FMV-BookingService/pkg/simpletxmanager"
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
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

	log.Info("Starting FMV-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем интеграционных клиентов
	clinicClient := clinicServiceClient.NewClient(
		cfg.ClinicService.URL,
		time.Duration(cfg.ClinicService.Timeout)*time.Second,
		log,
	)
	petClient := petServiceClient.NewClient(
		cfg.PetService.URL,
		time.Duration(cfg.PetService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ClinicService=%s timeout=%ds, PetService=%s timeout=%ds)",
		cfg.ClinicService.URL, cfg.ClinicService.Timeout, cfg.PetService.URL, cfg.PetService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository    *slotRepo.Repository
		apptRepository    *apptRepo.Repository
		historyRepository *historyRepo.Repository
		configRepository  *configRepo.Repository
	)

	// Интерфейс transaction manager, общий для services и usecases
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		apptRepository = apptRepo.NewRepository(wrappedDB)
		historyRepository = historyRepo.NewRepository(wrappedDB)
		configRepository = configRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		apptRepository = apptRepo.NewRepository(db)
		historyRepository = historyRepo.NewRepository(db)
		configRepository = configRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		apptRepository,
		slotRepository,
		historyRepository,
		clinicClient,
		txMgr,
		log,
	)
	slotsSvc := slotsService.NewService(
		slotRepository,
		apptRepository,
		historyRepository,
		clinicClient,
		txMgr,
		log,
	)
	scheduleConfigSvc := scheduleConfigService.NewService(
		configRepository,
		clinicClient,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		apptRepository,
		slotRepository,
		historyRepository,
		clinicClient,
		petClient,
		txMgr,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		apptRepository,
		slotRepository,
		historyRepository,
		clinicClient,
		txMgr,
		log,
	)
	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		slotRepository,
		configRepository,
		clinicClient,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		slotRepository,
		clinicClient,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getNextAvailable := getNextAvailableHandler.NewHandler(slotsSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getAppointmentByCode := getAppointmentByCodeHandler.NewHandler(appointmentsSvc, log)
	getAppointmentHistory := getAppointmentHistoryHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	getUserAppointments := getUserAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getClinicAppointments := getClinicAppointmentsHandler.NewHandler(appointmentsSvc, log)
	blockSlot := blockSlotHandler.NewHandler(slotsSvc, log)
	unblockSlot := unblockSlotHandler.NewHandler(slotsSvc, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(scheduleConfigSvc, log)
	updateScheduleConfig := updateScheduleConfigHandler.NewHandler(scheduleConfigSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты клиники по дням
	api.HandleFunc("/clinics/{clinicId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Ближайший открытый слот клиники
	api.HandleFunc("/clinics/{clinicId}/next-available-slot",
		getNextAvailable.Handle).Methods(http.MethodGet)

	// Действующая конфигурация расписания клиники
	api.HandleFunc("/clinics/{clinicId}/schedule-config",
		getScheduleConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи на приём ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по коду подтверждения (регистрируется до {appointmentId})
	protected.HandleFunc("/appointments/by-code/{code}", getAppointmentByCode.Handle).Methods(http.MethodGet)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// История переходов статуса записи
	protected.HandleFunc("/appointments/{appointmentId}/history", getAppointmentHistory.Handle).Methods(http.MethodGet)

	// Отмена записи
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// Перенос записи на другой слот
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)

	// Смена статуса записи клиникой (completed / no_show)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)

	// Записи владельца питомцев
	protected.HandleFunc("/users/{userId}/appointments", getUserAppointments.Handle).Methods(http.MethodGet)

	// --- Управление клиникой (для сотрудников) ---
	// Записи клиники
	protected.HandleFunc("/clinics/{clinicId}/appointments", getClinicAppointments.Handle).Methods(http.MethodGet)

	// Генерация слотов расписания
	protected.HandleFunc("/clinics/{clinicId}/slots/generate", generateSlots.Handle).Methods(http.MethodPost)

	// Блокировка и разблокировка слота
	protected.HandleFunc("/slots/{slotId}/block", blockSlot.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}/unblock", unblockSlot.Handle).Methods(http.MethodPatch)

	// Управление конфигурацией расписания
	protected.HandleFunc("/clinics/{clinicId}/schedule-config", updateScheduleConfig.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/clinics/{clinicId}/schedule-config", updateScheduleConfig.HandleDelete).Methods(http.MethodDelete)

	// Фоновый перевод просроченных записей в no_show
	stopSweeperCh := make(chan struct{})
	if cfg.Sweeper.Enabled {
		grace := time.Duration(cfg.Sweeper.GraceMinutes) * time.Minute
		interval := time.Duration(cfg.Sweeper.IntervalMinutes) * time.Minute

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					swept, err := appointmentsSvc.SweepNoShows(context.Background(), grace)
					if err != nil {
						log.Error("No-show sweeper failed: %v", err)
						continue
					}
					if swept > 0 {
						log.Info("No-show sweeper marked %d appointments", swept)
					}
				case <-stopSweeperCh:
					return
				}
			}
		}()
		log.Info("No-show sweeper started (interval=%dm, grace=%dm)",
			cfg.Sweeper.IntervalMinutes, cfg.Sweeper.GraceMinutes)
	}

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

	// Останавливаем фоновые задачи
	if cfg.Sweeper.Enabled {
		close(stopSweeperCh)
		log.Info("No-show sweeper stopped")
	}
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
