package web

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/vbonduro/everything/internal/auth"
	"github.com/vbonduro/everything/internal/commute"
	"github.com/vbonduro/everything/internal/events"
	"github.com/vbonduro/everything/internal/metrics"
	"github.com/vbonduro/everything/internal/notify"
	"github.com/vbonduro/everything/internal/scheduler"
	"github.com/vbonduro/everything/internal/service"
	"github.com/vbonduro/everything/internal/sysinfo"
	"github.com/vbonduro/everything/internal/voice"
)

const shutdownTimeout = 10 * time.Second

// Deps are the components the HTTP layer serves. Nil optional components
// make their routes answer 503.
type Deps struct {
	Reminders    *service.ReminderService
	Appointments *service.AppointmentService
	Inventory    *service.InventoryService
	Receipts     *service.ReceiptService
	Home         *service.HomeService
	Events       *service.EventService
	Health       *service.HealthService

	Commute   *commute.Client
	Voice     *voice.Pipeline
	Hub       *events.Hub
	Push      *notify.Expo
	Scheduler *scheduler.Scheduler
	System    *sysinfo.Reader

	Users  *auth.Authenticator
	Tokens *auth.JWTManager
}

type Server struct {
	deps   Deps
	mux    *http.ServeMux
	routes []string
	logger *slog.Logger
}

func NewServer(deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		deps:   deps,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

// handle registers h on pattern and remembers the pattern for Routes.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
	s.routes = append(s.routes, pattern)
}

// Routes returns every registered route pattern in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) registerRoutes() {
	s.handle("GET /{$}", s.handleRoot)
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.routes = append(s.routes, "GET /metrics")

	s.handle("POST /reminders", s.handleCreateReminder)
	s.handle("GET /reminders", s.handleListReminders)
	s.handle("GET /reminders/upcoming", s.handleUpcomingReminders)
	s.handle("GET /reminders/{id}", s.handleGetReminder)
	s.handle("PUT /reminders/{id}", s.handleUpdateReminder)
	s.handle("DELETE /reminders/{id}", s.handleDeleteReminder)
	s.handle("POST /reminders/{id}/complete", s.handleCompleteReminder)

	s.handle("POST /appointments", s.handleCreateAppointment)
	s.handle("GET /appointments", s.handleListAppointments)
	s.handle("GET /appointments/{id}", s.handleGetAppointment)
	s.handle("PUT /appointments/{id}", s.handleUpdateAppointment)
	s.handle("DELETE /appointments/{id}", s.handleDeleteAppointment)
	s.handle("POST /appointments/{id}/status/{status}", s.handleAppointmentStatus)

	s.handle("POST /inventory/items", s.handleCreateItem)
	s.handle("GET /inventory/items", s.handleListItems)
	s.handle("GET /inventory/items/{id}", s.handleGetItem)
	s.handle("PUT /inventory/items/{id}", s.handleUpdateItem)
	s.handle("DELETE /inventory/items/{id}", s.handleDeleteItem)
	s.handle("GET /inventory/categories", s.handleItemCategories)
	s.handle("GET /inventory/low-stock", s.handleLowStock)
	s.handle("GET /inventory/snacks", s.handleSnacks)
	s.handle("POST /inventory/update", s.handleUpsertItem)

	s.handle("POST /receipts", s.handleCreateReceipt)
	s.handle("GET /receipts", s.handleListReceipts)
	s.handle("GET /receipts/stores", s.handleReceiptStores)
	s.handle("GET /receipts/summary", s.handleReceiptSummary)
	s.handle("POST /receipts/scan", s.handleScanReceipt)
	s.handle("GET /receipts/{id}", s.handleGetReceipt)
	s.handle("DELETE /receipts/{id}", s.handleDeleteReceipt)
	s.handle("GET /receipts/{id}/image", s.handleReceiptImage)

	s.handle("POST /home/devices", s.handleCreateDevice)
	s.handle("GET /home/devices", s.handleListDevices)
	s.handle("GET /home/devices/{id}", s.handleGetDevice)
	s.handle("DELETE /home/devices/{id}", s.handleDeleteDevice)
	s.handle("PUT /home/devices/{id}/status/{status}", s.handleDeviceStatus)
	s.handle("PUT /home/devices/{id}/settings", s.handleDeviceSettings)
	s.handle("PUT /home/devices/named/{name}/status/{status}", s.handleNamedDeviceStatus)
	s.handle("GET /home/status", s.handleHomeStatus)
	s.handle("POST /home/arrive", s.handleArrive)

	s.handle("POST /events", s.handleCreateEvent)
	s.handle("GET /events", s.handleListEvents)
	s.handle("GET /events/stream", s.handleEventStream)
	s.handle("GET /events/device/{device_id}", s.handleDeviceEvents)
	s.handle("GET /events/{id}", s.handleGetEvent)
	s.handle("DELETE /events/{id}", s.handleDeleteEvent)

	s.handle("POST /health/gym/check-in", s.handleGymCheckIn)
	s.handle("GET /health/gym/summary", s.handleGymSummary)

	s.handle("GET /commute/status", s.handleCommuteStatus)
	s.handle("GET /commute/summary", s.handleCommuteSummary)

	s.handle("POST /voice/command", s.handleVoiceCommand)
	s.handle("POST /voice/text", s.handleVoiceText)

	s.handle("POST /notifications/register/expo", s.handleRegisterExpo)
	s.handle("GET /schedule/tasks", s.handleScheduleTasks)
	s.handle("POST /schedule/enable/{id}", s.handleScheduleEnable)
	s.handle("POST /schedule/disable/{id}", s.handleScheduleDisable)

	s.handle("POST /auth/token", s.handleToken)
	s.handle("GET /system/info", s.admin(s.handleSystemInfo))
	s.handle("GET /system/disk", s.admin(s.handleSystemDisk))
	s.handle("GET /system/network", s.admin(s.handleSystemNetwork))
	s.handle("GET /files/list", s.admin(s.handleFileList))
	s.handle("GET /files/info", s.admin(s.handleFileInfo))
	s.handle("POST /files/mkdir", s.admin(s.handleFileMkdir))
	s.handle("DELETE /files/remove", s.admin(s.handleFileRemove))
	s.handle("POST /files/copy", s.admin(s.handleFileCopy))
	s.handle("GET /process/list", s.admin(s.handleProcessList))
	s.handle("POST /process/run", s.admin(s.handleProcessRun))
	s.handle("GET /process/{pid}", s.admin(s.handleGetProcess))
	s.handle("DELETE /process/{pid}", s.admin(s.handleKillProcess))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, message("Everything App running"))
}

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the event stream upgrade through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type requestIDKey struct{}

const requestIDHeader = "X-Request-ID"

// requestID returns the id assigned to the request by requestLogger.
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestLogger assigns a request id, then logs and counts the request
// against the route pattern it matched.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", id,
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves HTTP/1.1 and cleartext HTTP/2 on addr until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      h2c.NewHandler(s, &http2.Server{}),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
