package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vbonduro/everything/internal/domain"
)

const (
	DeviceLight = "light"
	DeviceAlarm = "alarm"
	DeviceLock  = "lock"

	StatusOn       = "on"
	StatusOff      = "off"
	StatusArmed    = "armed"
	StatusDisarmed = "disarmed"
	StatusLocked   = "locked"
)

var mainRooms = []string{"living_room", "kitchen"}

// deviceRepository is the subset of store.DeviceStore that HomeService requires.
type deviceRepository interface {
	Create(ctx context.Context, d *domain.Device) (*domain.Device, error)
	GetByID(ctx context.Context, id int64) (*domain.Device, error)
	GetByName(ctx context.Context, name string) (*domain.Device, error)
	List(ctx context.Context) ([]*domain.Device, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateSettings(ctx context.Context, id int64, settings map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// eventRecorder is the part of EventService HomeService logs through.
type eventRecorder interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
}

// Synthesizer turns a sentence into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type HomeService struct {
	store  deviceRepository
	events eventRecorder
	tts    Synthesizer
	now    clock
	logger *slog.Logger
}

func NewHomeService(store deviceRepository, events eventRecorder, tts Synthesizer, logger *slog.Logger) *HomeService {
	return &HomeService{store: store, events: events, tts: tts, now: systemClock, logger: logger}
}

func (s *HomeService) Create(ctx context.Context, d *domain.Device) (*domain.Device, error) {
	if err := domain.ValidateDevice(d); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, d)
}

func (s *HomeService) Get(ctx context.Context, id int64) (*domain.Device, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFound("device", id)
	}
	return d, nil
}

func (s *HomeService) List(ctx context.Context) ([]*domain.Device, error) {
	return s.store.List(ctx)
}

func (s *HomeService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *HomeService) SetStatus(ctx context.Context, id int64, status string) (*domain.Device, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return nil, domain.Invalid("status", "required")
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to set device status: %w", err)
	}
	return s.Get(ctx, id)
}

// SetStatusByName updates the device whose name matches case-insensitively.
func (s *HomeService) SetStatusByName(ctx context.Context, name, status string) (*domain.Device, error) {
	d, err := s.store.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("device %q: %w", name, domain.ErrNotFound)
	}
	return s.SetStatus(ctx, d.ID, status)
}

// MergeSettings shallow-merges patch into the device's settings.
func (s *HomeService) MergeSettings(ctx context.Context, id int64, patch map[string]any) (*domain.Device, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(d.Settings)+len(patch))
	maps.Copy(merged, d.Settings)
	maps.Copy(merged, patch)
	if err := s.store.UpdateSettings(ctx, id, merged); err != nil {
		return nil, fmt.Errorf("failed to update device settings: %w", err)
	}
	return s.Get(ctx, id)
}

type LocationStatus struct {
	Devices   []*domain.Device `json:"devices"`
	DevicesOn int              `json:"devices_on"`
}

type HomeStatus struct {
	TotalDevices int                        `json:"total_devices"`
	DevicesOn    int                        `json:"devices_on"`
	Locations    map[string]*LocationStatus `json:"locations"`
}

// Status groups devices by location with counts of devices that are on.
func (s *HomeService) Status(ctx context.Context) (*HomeStatus, error) {
	devices, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	status := &HomeStatus{Locations: map[string]*LocationStatus{}}
	for _, d := range devices {
		loc, ok := status.Locations[d.Location]
		if !ok {
			loc = &LocationStatus{Devices: []*domain.Device{}}
			status.Locations[d.Location] = loc
		}
		loc.Devices = append(loc.Devices, d)
		status.TotalDevices++
		if d.Status == StatusOn {
			loc.DevicesOn++
			status.DevicesOn++
		}
	}
	return status, nil
}

type ArrivalOptions struct {
	AutoLights     bool
	DisarmSecurity bool
}

type ArrivalReport struct {
	Message        string    `json:"message"`
	WelcomeMessage string    `json:"welcome_message"`
	Updates        []string  `json:"updates"`
	Attention      []string  `json:"attention_needed"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Audio          []byte    `json:"audio,omitempty"`
}

// Arrive runs the welcome-home sequence: main lights on when the house is
// dark, armed alarms disarmed, unlocked locks reported, an arrival event
// logged and the welcome message spoken.
func (s *HomeService) Arrive(ctx context.Context, opts ArrivalOptions) (*ArrivalReport, error) {
	devices, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		lights, alarms, locks []*domain.Device
		anyLightOn            bool
	)
	for _, d := range devices {
		switch d.Type {
		case DeviceLight:
			lights = append(lights, d)
			anyLightOn = anyLightOn || d.Status == StatusOn
		case DeviceAlarm:
			alarms = append(alarms, d)
		case DeviceLock:
			locks = append(locks, d)
		}
	}

	report := &ArrivalReport{
		Message:     "Welcome sequence completed",
		Updates:     []string{},
		Attention:   []string{},
		ArrivalTime: s.now(),
	}

	if opts.AutoLights && len(lights) > 0 && !anyLightOn {
		targets := lightsIn(lights, mainRooms)
		if len(targets) == 0 {
			targets = lights
		}
		for _, d := range targets {
			if err := s.store.UpdateStatus(ctx, d.ID, StatusOn); err != nil {
				return nil, fmt.Errorf("failed to turn on %s: %w", d.Name, err)
			}
		}
		report.Updates = append(report.Updates, "turned on "+joinNames(targets)+" lights")
	}

	if opts.DisarmSecurity {
		var disarmed []*domain.Device
		for _, d := range alarms {
			if d.Status != StatusArmed {
				continue
			}
			if err := s.store.UpdateStatus(ctx, d.ID, StatusDisarmed); err != nil {
				return nil, fmt.Errorf("failed to disarm %s: %w", d.Name, err)
			}
			disarmed = append(disarmed, d)
		}
		if len(disarmed) > 0 {
			report.Updates = append(report.Updates, "disarmed "+joinNames(disarmed))
		}
	}

	for _, d := range locks {
		if d.Status != StatusLocked {
			report.Attention = append(report.Attention, TitleCase(d.Name)+" is unlocked")
		}
	}

	msg := "Welcome home!"
	if len(report.Updates) > 0 {
		msg += " I've " + strings.Join(report.Updates, " and ") + "."
	}
	if len(report.Attention) > 0 {
		msg += " Please note: " + strings.Join(report.Attention, ", ") + "."
	}
	report.WelcomeMessage = msg

	if _, err := s.events.Create(ctx, &domain.Event{
		EventType:   "arrival",
		Description: msg,
		Severity:    domain.SeverityInfo,
		Metadata: map[string]any{
			"updates":          report.Updates,
			"attention_needed": report.Attention,
			"auto_lights":      opts.AutoLights,
			"disarm_security":  opts.DisarmSecurity,
		},
		Timestamp: report.ArrivalTime,
	}); err != nil {
		return nil, fmt.Errorf("failed to log arrival: %w", err)
	}

	if s.tts != nil {
		audio, err := s.tts.Synthesize(ctx, msg)
		if err != nil {
			s.logger.Warn("failed to speak welcome message", "error", err)
		} else {
			report.Audio = audio
		}
	}

	s.logger.Info("arrival sequence complete", "updates", len(report.Updates), "attention", len(report.Attention))
	return report, nil
}

func lightsIn(lights []*domain.Device, rooms []string) []*domain.Device {
	var out []*domain.Device
	for _, d := range lights {
		for _, room := range rooms {
			if strings.EqualFold(d.Location, room) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func joinNames(devices []*domain.Device) string {
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = TitleCase(d.Name)
	}
	return strings.Join(names, ", ")
}

// TitleCase renders a device or room name for speech, e.g. "living_room" as
// "Living Room".
func TitleCase(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	return cases.Title(language.English).String(s)
}
