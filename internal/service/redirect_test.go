package service_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/linkflow/linkflow/internal/model"
	"github.com/linkflow/linkflow/internal/service"
)

type fakeSelector struct {
	sel   model.NumberSelection
	err   error
	panic bool
	calls []string
}

func (f *fakeSelector) SelectNextNumber(ctx context.Context, slug string) (model.NumberSelection, error) {
	f.calls = append(f.calls, slug)
	if f.panic {
		panic("selector exploded")
	}
	return f.sel, f.err
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []model.ClickEvent
	err    error
	panic  bool
}

func (f *fakeRecorder) RecordClick(ctx context.Context, evt model.ClickEvent) error {
	f.mu.Lock()
	f.events = append(f.events, evt)
	f.mu.Unlock()
	if f.panic {
		panic("recorder exploded")
	}
	return f.err
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

var (
	_ service.NumberSelector = (*fakeSelector)(nil)
	_ service.ClickRecorder  = (*fakeRecorder)(nil)
)

func TestRedirector_MobileVisitRecordsAndBuildsDestination(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{sel: model.NumberSelection{NumberID: "n1", Phone: "11988887777", FinalMessage: "Olá!"}}
	rec := &fakeRecorder{}
	r := service.NewRedirector(sel, rec, "")

	out, err := r.Resolve(context.Background(), service.Visit{
		Slug:      "suporte-tecnico",
		IP:        "unknown",
		UserAgent: "Mozilla/5.0 (Mobile)",
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := "https://wa.me/5511988887777?text=Ol%C3%A1!"
	if out.Destination != want {
		t.Fatalf("expected destination %q, got %q", want, out.Destination)
	}
	if !out.Recorded {
		t.Fatalf("expected click to be recorded")
	}

	if rec.count() != 1 {
		t.Fatalf("expected 1 recorder call, got %d", rec.count())
	}
	got := rec.events[0]
	if got.GroupSlug != "suporte-tecnico" || got.NumberPhone != "11988887777" ||
		got.IPAddress != "unknown" || got.DeviceType != model.Mobile {
		t.Fatalf("unexpected click event: %+v", got)
	}
}

func TestRedirector_NoNumberSkipsRecorder(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{err: model.ErrNoActiveNumber}
	rec := &fakeRecorder{}
	r := service.NewRedirector(sel, rec, "")

	_, err := r.Resolve(context.Background(), service.Visit{Slug: "inexistente"})
	if !errors.Is(err, model.ErrNoActiveNumber) {
		t.Fatalf("expected ErrNoActiveNumber, got %v", err)
	}
	if rec.count() != 0 {
		t.Fatalf("expected recorder not to be called, got %d calls", rec.count())
	}
}

func TestRedirector_SelectorFailureIsAnError(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{err: errors.New("connection refused")}
	rec := &fakeRecorder{}
	r := service.NewRedirector(sel, rec, "")

	if _, err := r.Resolve(context.Background(), service.Visit{Slug: "vendas"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if rec.count() != 0 {
		t.Fatalf("expected recorder not to be called")
	}
}

func TestRedirector_EmptySlugNeverReachesSelector(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{}
	r := service.NewRedirector(sel, &fakeRecorder{}, "")

	_, err := r.Resolve(context.Background(), service.Visit{Slug: "  "})
	if !errors.Is(err, model.ErrNoActiveNumber) {
		t.Fatalf("expected ErrNoActiveNumber, got %v", err)
	}
	if len(sel.calls) != 0 {
		t.Fatalf("expected selector not to be called, got %v", sel.calls)
	}
}

func TestRedirector_RecorderFailureDoesNotChangeDestination(t *testing.T) {
	t.Parallel()

	selection := model.NumberSelection{NumberID: "n1", Phone: "11999999999", FinalMessage: "Oi"}
	visit := service.Visit{Slug: "vendas", IP: "10.0.0.1", UserAgent: "curl/8"}

	ok, err := service.NewRedirector(&fakeSelector{sel: selection}, &fakeRecorder{}, "").
		Resolve(context.Background(), visit)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	for name, rec := range map[string]*fakeRecorder{
		"error": {err: errors.New("insert failed")},
		"panic": {panic: true},
	} {
		out, err := service.NewRedirector(&fakeSelector{sel: selection}, rec, "").
			Resolve(context.Background(), visit)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", name, err)
		}
		if out.Destination != ok.Destination {
			t.Fatalf("%s: expected %q, got %q", name, ok.Destination, out.Destination)
		}
		if out.Recorded {
			t.Fatalf("%s: expected Recorded=false", name)
		}
	}
}

func TestRedirector_PanicInSelectorBecomesError(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	r := service.NewRedirector(&fakeSelector{panic: true}, rec, "")

	out, err := r.Resolve(context.Background(), service.Visit{Slug: "vendas"})
	if err == nil {
		t.Fatalf("expected error from recovered panic")
	}
	if out.Destination != "" {
		t.Fatalf("expected empty outcome, got %+v", out)
	}
	if rec.count() != 0 {
		t.Fatalf("expected recorder not to be called")
	}
}

func TestRedirector_DefaultMessageWhenSelectionHasNone(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{sel: model.NumberSelection{NumberID: "n1", Phone: "5511999999999"}}
	r := service.NewRedirector(sel, &fakeRecorder{}, "Oi (vim do site)")

	out, err := r.Resolve(context.Background(), service.Visit{Slug: "vendas"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := "https://wa.me/5511999999999?text=Oi%20(vim%20do%20site)"
	if out.Destination != want {
		t.Fatalf("expected %q, got %q", want, out.Destination)
	}
}

func TestRedirector_DestinationAlwaysCarriesCountryCode(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^https://wa\.me/55\d+\?text=.+`)
	for _, phone := range []string{"11999999999", "5511999999999", "(11) 99999-9999", "+55 11 99999 9999"} {
		sel := &fakeSelector{sel: model.NumberSelection{NumberID: "n", Phone: phone, FinalMessage: "hi"}}
		out, err := service.NewRedirector(sel, &fakeRecorder{}, "").
			Resolve(context.Background(), service.Visit{Slug: "vendas"})
		if err != nil {
			t.Fatalf("phone %q: %v", phone, err)
		}
		if !pattern.MatchString(out.Destination) {
			t.Fatalf("phone %q: destination %q does not match %s", phone, out.Destination, pattern)
		}
	}
}
