package api

import (
	"net/http"
	"strings"

	"github.com/linkflow/linkflow/internal/model"
)

func (h *Handler) ListNumbers(w http.ResponseWriter, r *http.Request) {
	groupID := strings.TrimSpace(r.URL.Query().Get("groupId"))
	if groupID != "" && !model.IsUUID(groupID) {
		v := &model.ValidationError{}
		v.Add("groupId", "must be a UUID")
		writeRepoErr(w, r, v)
		return
	}

	numbers, err := h.Numbers.ListNumbers(r.Context(), groupID)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, numbers)
}

func (h *Handler) GetNumber(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	n, err := h.Numbers.GetNumber(r.Context(), id)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, n)
}

func (h *Handler) CreateNumber(w http.ResponseWriter, r *http.Request) {
	in, err := decodeNumberInput(w, r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	n, err := h.Numbers.CreateNumber(r.Context(), in)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, n)
}

func (h *Handler) UpdateNumber(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	in, err := decodeNumberInput(w, r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	n, err := h.Numbers.UpdateNumber(r.Context(), id, in)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, n)
}

func (h *Handler) DeleteNumber(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	if err := h.Numbers.DeleteNumber(r.Context(), id); err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

// NextNumber exposes the selector directly. It advances the rotation like a real visit
// but records no click.
func (h *Handler) NextNumber(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.URL.Query().Get("groupSlug"))
	if slug == "" {
		v := &model.ValidationError{}
		v.Add("groupSlug", "is required")
		writeRepoErr(w, r, v)
		return
	}

	sel, err := h.Selector.SelectNextNumber(r.Context(), slug)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, sel)
}

func decodeNumberInput(w http.ResponseWriter, r *http.Request) (model.NumberInput, error) {
	var in model.NumberInput
	if err := decodeBody(w, r, &in); err != nil {
		return model.NumberInput{}, err
	}
	in.Normalize()
	return in, in.Validate()
}
