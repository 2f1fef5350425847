package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
)

const maxExportRows = 100000

type clickCSVRow struct {
	CreatedAt  string `csv:"created_at"`
	GroupName  string `csv:"group_name"`
	GroupSlug  string `csv:"group_slug"`
	Phone      string `csv:"phone"`
	DeviceType string `csv:"device_type"`
	IPAddress  string `csv:"ip_address"`
	UserAgent  string `csv:"user_agent"`
	Referrer   string `csv:"referrer"`
}

// ExportClicks writes the filtered clicks as a CSV attachment, newest first.
func (h *Handler) ExportClicks(w http.ResponseWriter, r *http.Request) {
	f, err := parseStatsFilter(r.URL.Query())
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), maxExportRows)
	if limit <= 0 || limit > maxExportRows {
		limit = maxExportRows
	}

	clicks, err := h.Clicks.ListClicks(r.Context(), f, limit)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	rows := make([]*clickCSVRow, 0, len(clicks))
	for _, c := range clicks {
		rows = append(rows, &clickCSVRow{
			CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
			GroupName:  c.GroupName,
			GroupSlug:  c.GroupSlug,
			Phone:      c.Phone,
			DeviceType: string(c.DeviceType),
			IPAddress:  c.IPAddress,
			UserAgent:  c.UserAgent,
			Referrer:   c.Referrer,
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		writeRepoErr(w, r, fmt.Errorf("encode csv: %w", err))
		return
	}

	filename := fmt.Sprintf("clicks-%s.csv", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
