package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/academydb/academydb/cmd/academydb/cli"
	"github.com/academydb/academydb/internal/accounts"
	"github.com/academydb/academydb/internal/app"
	"github.com/academydb/academydb/internal/attendance"
	"github.com/academydb/academydb/internal/audit"
	"github.com/academydb/academydb/internal/auth"
	"github.com/academydb/academydb/internal/courses"
	"github.com/academydb/academydb/internal/enrollment"
	"github.com/academydb/academydb/internal/faculty"
	"github.com/academydb/academydb/internal/grades"
	"github.com/academydb/academydb/internal/observability"
	"github.com/academydb/academydb/internal/platform/cache"
	"github.com/academydb/academydb/internal/platform/db"
	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/security"
	"github.com/academydb/academydb/internal/sensitive"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/students"
	"github.com/academydb/academydb/internal/view"
	"github.com/academydb/academydb/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCLI(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs cli", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "academydb_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	activityLogger := shared.NewActivityLogger(dbpool, logger)
	rateLimiter := shared.NewRateLimiter(shared.NewPGRateLimitStore(dbpool), logger)

	securityService := security.NewService(security.NewRepository(dbpool), logger)

	guard := rbac.Middleware{
		Sessions: sessionManager,
		Timeouts: securityService,
		Limiter:  rateLimiter,
		Activity: activityLogger,
		Logger:   logger,
	}

	authService := auth.NewService(auth.NewRepository(dbpool), logger)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, rateLimiter, securityService, activityLogger, metrics)

	securityHandler := security.NewHandler(logger, securityService, templates, csrfManager, activityLogger, guard)

	accountsService := accounts.NewService(accounts.NewPGRepository(dbpool), securityService, logger)
	accountsHandler := accounts.NewHandler(logger, accountsService, templates, csrfManager, activityLogger, guard)

	studentsService := students.NewService(students.NewRepository(dbpool))
	studentsHandler := students.NewHandler(logger, studentsService, templates, csrfManager, activityLogger, guard)

	facultyService := faculty.NewService(faculty.NewPGRepository(dbpool), logger)
	facultyHandler := faculty.NewHandler(logger, facultyService, templates, csrfManager, activityLogger, guard)

	coursesService := courses.NewService(courses.NewPGRepository(dbpool), logger)
	coursesHandler := courses.NewHandler(logger, coursesService, templates, csrfManager, activityLogger, guard)

	enrollmentService := enrollment.NewService(enrollment.NewPGRepository(dbpool), logger)
	enrollmentHandler := enrollment.NewHandler(logger, enrollmentService, coursesService, templates, csrfManager, activityLogger, guard)

	gradesService := grades.NewService(grades.NewPGRepository(dbpool), coursesService, logger)
	gradesHandler := grades.NewHandler(logger, gradesService, templates, csrfManager, activityLogger, guard)

	attendanceService := attendance.NewService(attendance.NewPGRepository(dbpool), coursesService, logger)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, templates, csrfManager, activityLogger, guard)

	sensitiveService := sensitive.NewService(sensitive.NewRepository(dbpool))
	sensitiveHandler := sensitive.NewHandler(logger, sensitiveService, templates, csrfManager, activityLogger, guard)

	auditService := audit.NewService(audit.NewPGRepository(dbpool))
	auditHandler := audit.NewHandler(logger, auditService, templates, csrfManager, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Templates:         templates,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		AccountsHandler:   accountsHandler,
		StudentsHandler:   studentsHandler,
		FacultyHandler:    facultyHandler,
		CoursesHandler:    coursesHandler,
		EnrollmentHandler: enrollmentHandler,
		GradesHandler:     gradesHandler,
		AttendanceHandler: attendanceHandler,
		SensitiveHandler:  sensitiveHandler,
		SecurityHandler:   securityHandler,
		AuditHandler:      auditHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobsCLI(ctx context.Context, cfg *app.Config, args []string) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = jobsCLI.Close()
	}()

	if len(args) == 0 {
		return fmt.Errorf("usage: academydb jobs [trigger <task>|stats]")
	}
	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: academydb jobs trigger <task>")
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", args[1], info.ID, info.Queue)
		return nil
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return nil
	default:
		return fmt.Errorf("unknown jobs command %q", args[0])
	}
}
