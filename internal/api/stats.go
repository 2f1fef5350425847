package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linkflow/linkflow/internal/model"
)

const dateOnly = "2006-01-02"

func (h *Handler) FilteredStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseStatsFilter(r.URL.Query())
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	stats, err := h.Stats.Dashboard(r.Context(), f)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, stats)
}

func (h *Handler) GroupAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	f, err := parseStatsFilter(r.URL.Query())
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	out, err := h.Stats.GroupAnalytics(r.Context(), id, f)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, out)
}

// parseStatsFilter reads dateFrom, dateTo and groupIds. A date-only dateTo covers
// that whole day.
func parseStatsFilter(q url.Values) (model.StatsFilter, error) {
	var f model.StatsFilter
	v := &model.ValidationError{}

	if raw := strings.TrimSpace(q.Get("dateFrom")); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			v.Add("dateFrom", "must be YYYY-MM-DD or RFC 3339")
		} else {
			f.From = &t
		}
	}

	if raw := strings.TrimSpace(q.Get("dateTo")); raw != "" {
		t, dayOnly, err := parseDate(raw)
		if err != nil {
			v.Add("dateTo", "must be YYYY-MM-DD or RFC 3339")
		} else {
			if dayOnly {
				t = t.Add(24 * time.Hour)
			}
			f.To = &t
		}
	}

	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		v.Add("dateTo", "must be after dateFrom")
	}

	for _, raw := range q["groupIds"] {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if !model.IsUUID(id) {
				v.Add("groupIds", "must be a comma-separated list of UUIDs")
				return model.StatsFilter{}, v
			}
			f.GroupIDs = append(f.GroupIDs, id)
		}
	}

	if err := v.OrNil(); err != nil {
		return model.StatsFilter{}, err
	}
	return f, nil
}

func parseDate(raw string) (t time.Time, dayOnly bool, err error) {
	if t, err = time.Parse(dateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	return t, false, err
}
