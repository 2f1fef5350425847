package api

import (
	"net/http"

	"github.com/linkflow/linkflow/internal/model"
)

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.ListGroups(r.Context())
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	g, err := h.Groups.GetGroup(r.Context(), id)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, g)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	in, err := decodeGroupInput(w, r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	g, err := h.Groups.CreateGroup(r.Context(), in)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, g)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	in, err := decodeGroupInput(w, r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	g, err := h.Groups.UpdateGroup(r.Context(), id, in)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, g)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	if err := h.Groups.DeleteGroup(r.Context(), id); err != nil {
		writeRepoErr(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func decodeGroupInput(w http.ResponseWriter, r *http.Request) (model.GroupInput, error) {
	var in model.GroupInput
	if err := decodeBody(w, r, &in); err != nil {
		return model.GroupInput{}, err
	}
	in.Normalize()
	return in, in.Validate()
}
