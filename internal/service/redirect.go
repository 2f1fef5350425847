package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linkflow/linkflow/internal/model"
)

type NumberSelector interface {
	SelectNextNumber(ctx context.Context, groupSlug string) (model.NumberSelection, error)
}

type ClickRecorder interface {
	RecordClick(ctx context.Context, evt model.ClickEvent) error
}

// Visit is one inbound short-link hit.
type Visit struct {
	Slug      string
	IP        string
	UserAgent string
	Referrer  string
}

// Outcome is what a successful visit resolves to.
type Outcome struct {
	Destination string
	Phone       string
	Selection   model.NumberSelection
	DeviceType  model.DeviceType
	Recorded    bool
}

type Redirector struct {
	selector       NumberSelector
	recorder       ClickRecorder
	defaultMessage string
}

func NewRedirector(selector NumberSelector, recorder ClickRecorder, defaultMessage string) *Redirector {
	if strings.TrimSpace(defaultMessage) == "" {
		defaultMessage = DefaultGreeting
	}
	return &Redirector{
		selector:       selector,
		recorder:       recorder,
		defaultMessage: defaultMessage,
	}
}

// Resolve selects the next number for v.Slug, records the click and returns the
// wa.me destination. Any error means the visitor goes to the error page; click
// recording never produces one.
func (r *Redirector) Resolve(ctx context.Context, v Visit) (out Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = Outcome{}
			err = fmt.Errorf("redirect %q: panic: %v", v.Slug, p)
		}
	}()

	device := DetectDevice(v.UserAgent)

	sel, err := r.selectNumber(ctx, v.Slug)
	if err != nil {
		return Outcome{}, err
	}

	recorded := r.record(ctx, model.ClickEvent{
		GroupSlug:   v.Slug,
		NumberPhone: sel.Phone,
		IPAddress:   v.IP,
		UserAgent:   v.UserAgent,
		DeviceType:  device,
		Referrer:    v.Referrer,
	})

	phone := NormalizePhone(sel.Phone)
	return Outcome{
		Destination: WhatsAppURL(phone, r.message(sel)),
		Phone:       phone,
		Selection:   sel,
		DeviceType:  device,
		Recorded:    recorded,
	}, nil
}

func (r *Redirector) selectNumber(ctx context.Context, slug string) (model.NumberSelection, error) {
	if strings.TrimSpace(slug) == "" {
		return model.NumberSelection{}, model.ErrNoActiveNumber
	}

	sel, err := r.selector.SelectNextNumber(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrNoActiveNumber) {
			return model.NumberSelection{}, err
		}
		return model.NumberSelection{}, fmt.Errorf("select number for %q: %w", slug, err)
	}
	if model.Digits(sel.Phone) == "" {
		return model.NumberSelection{}, fmt.Errorf("select number for %q: selection has no phone digits", slug)
	}
	return sel, nil
}

// record never fails the visit: errors and panics are logged and reported as false.
func (r *Redirector) record(ctx context.Context, evt model.ClickEvent) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			slog.Warn("click recorder panic recovered", "slug", evt.GroupSlug, "phone", evt.NumberPhone, "panic", p)
			ok = false
		}
	}()

	if err := r.recorder.RecordClick(ctx, evt); err != nil {
		slog.Warn("click not recorded", "slug", evt.GroupSlug, "phone", evt.NumberPhone, "err", err)
		return false
	}
	return true
}

func (r *Redirector) message(sel model.NumberSelection) string {
	if strings.TrimSpace(sel.FinalMessage) != "" {
		return sel.FinalMessage
	}
	return r.defaultMessage
}
