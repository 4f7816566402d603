package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"recipe-desk/logger"
	"recipe-desk/recipe"
)

const msgEnterName = "Please enter a recipe name"

type saveRecipeRequest struct {
	Name   string  `json:"name"`
	Recipe *string `json:"recipe"`
}

func (h *handler) listRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("list recipes failed", "error", err)
		http.Error(w, "failed to list recipes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req saveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := ""
	if req.Recipe != nil {
		text = *req.Recipe
	}

	saved, err := h.store.Save(r.Context(), req.Name, text)
	if err != nil {
		if errors.Is(err, recipe.ErrInvalidName) {
			http.Error(w, msgEnterName, http.StatusBadRequest)
			return
		}
		logger.FromContext(r.Context()).Error("save recipe failed", "error", err)
		http.Error(w, "failed to save recipe", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	saved, err := h.store.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			http.Error(w, "recipe not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("find recipe failed", "id", id, "error", err)
		http.Error(w, "failed to load recipe", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		logger.FromContext(r.Context()).Error("delete recipe failed", "id", id, "error", err)
		http.Error(w, "failed to delete recipe", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func recipeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
