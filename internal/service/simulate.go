package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linkflow/linkflow/internal/model"
	"github.com/linkflow/linkflow/internal/repo"
)

type SimulationRequest struct {
	Slug      string
	Phone     string
	IP        string
	UserAgent string
	Referrer  string
}

type SimulationStep struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

type SimulationReport struct {
	Success         bool             `json:"success"`
	Slug            string           `json:"slug"`
	Phone           string           `json:"phone,omitempty"`
	NormalizedPhone string           `json:"normalized_phone,omitempty"`
	DeviceType      model.DeviceType `json:"device_type"`
	Destination     string           `json:"destination,omitempty"`
	Recorded        bool             `json:"recorded"`
	Error           string           `json:"error,omitempty"`
	Steps           []SimulationStep `json:"steps,omitempty"`

	err error
}

// Err is the failure that stopped the simulation, if any.
func (r *SimulationReport) Err() error {
	return r.err
}

// Simulator walks the redirect path like a real visit but reports every step,
// including recorder failures that the redirect path would hide.
type Simulator struct {
	selector       NumberSelector
	recorder       ClickRecorder
	defaultMessage string
}

func NewSimulator(selector NumberSelector, recorder ClickRecorder, defaultMessage string) *Simulator {
	if strings.TrimSpace(defaultMessage) == "" {
		defaultMessage = DefaultGreeting
	}
	return &Simulator{selector: selector, recorder: recorder, defaultMessage: defaultMessage}
}

// Simulate runs one click. When req.Phone is set the selector is bypassed and
// the click is recorded against that phone. An unknown group stops the run;
// other recorder failures are reported and the run continues.
func (s *Simulator) Simulate(ctx context.Context, req SimulationRequest) SimulationReport {
	rep := SimulationReport{Slug: req.Slug}

	device := DetectDevice(req.UserAgent)
	rep.DeviceType = device
	rep.step("detect_device", StepOK, string(device), time.Now())

	message := s.defaultMessage
	if req.Phone != "" {
		rep.Phone = req.Phone
		rep.step("select_number", StepSkipped, "phone supplied by caller", time.Now())
	} else {
		start := time.Now()
		sel, err := s.selector.SelectNextNumber(ctx, req.Slug)
		if err != nil {
			rep.fail("select_number", err, start)
			return rep
		}
		rep.Phone = sel.Phone
		if strings.TrimSpace(sel.FinalMessage) != "" {
			message = sel.FinalMessage
		}
		rep.step("select_number", StepOK, fmt.Sprintf("number_id=%s phone=%s", sel.NumberID, sel.Phone), start)
	}

	start := time.Now()
	err := s.recorder.RecordClick(ctx, model.ClickEvent{
		GroupSlug:   req.Slug,
		NumberPhone: rep.Phone,
		IPAddress:   req.IP,
		UserAgent:   req.UserAgent,
		DeviceType:  device,
		Referrer:    req.Referrer,
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		rep.fail("record_click", err, start)
		return rep
	case err != nil:
		rep.step("record_click", StepFailed, err.Error(), start)
	default:
		rep.Recorded = true
		rep.step("record_click", StepOK, "", start)
	}

	rep.NormalizedPhone = NormalizePhone(rep.Phone)
	rep.Destination = WhatsAppURL(rep.NormalizedPhone, message)
	rep.step("build_destination", StepOK, rep.Destination, time.Now())

	rep.Success = true
	return rep
}

func (r *SimulationReport) step(name, status, detail string, start time.Time) {
	r.Steps = append(r.Steps, SimulationStep{
		Name:       name,
		Status:     status,
		Detail:     detail,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

func (r *SimulationReport) fail(name string, err error, start time.Time) {
	r.err = err
	r.Error = err.Error()
	r.step(name, StepFailed, err.Error(), start)
}
