package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"recipe-desk/logger"
	"recipe-desk/recipe"
	"recipe-desk/workspace"
)

// maxInputBytes caps PUT /input bodies.
const maxInputBytes = 32 << 20

func (h *handler) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.List())
}

func (h *handler) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ws, err := h.manager.Create(req.Name)
	if err != nil {
		if errors.Is(err, workspace.ErrNameTaken) {
			http.Error(w, "workspace name already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create workspace", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ws.Info())
}

func (h *handler) closeWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.Close(id); err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			http.Error(w, "workspace not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to close workspace", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// workspaceFor resolves the {id} URL parameter, writing a 404 when absent.
func (h *handler) workspaceFor(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "workspace not found", http.StatusNotFound)
		return nil, false
	}
	return ws, true
}

func (h *handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ws.Snapshot())
}

func (h *handler) putInput(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
	if err != nil {
		http.Error(w, "input too large", http.StatusRequestEntityTooLarge)
		return
	}
	ws.SetInput(body)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) postControl(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var msg controlMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := applyControl(ws, msg); err != nil {
		if errors.Is(err, recipe.ErrMalformedSerialization) {
			http.Error(w, msgInvalidRecipe, http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// workspaceLink builds the save-dialog link for the workspace's current
// recipe and input. Both parts are requested unless turned off with
// ?recipe=false or ?input=false.
func (h *handler) workspaceLink(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	includeRecipe, err := boolQuery(r, "recipe")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	includeInput, err := boolQuery(r, "input")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	link := recipe.BuildShareableLink(h.baseAddress(r, ""), ws.RecipeConfig(), ws.Input(), includeRecipe, includeInput)
	writeJSON(w, http.StatusOK, newLinkResponse(link))
}

func (h *handler) saveText(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": ws.RecipeConfig().Pretty()})
}

// saveWorkspaceRecipe stores a named recipe and reports the outcome as a
// notification on the workspace. Without a recipe field the workspace's
// current recipe is saved.
func (h *handler) saveWorkspaceRecipe(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req saveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	text := ws.RecipeConfig().Pretty()
	if req.Recipe != nil {
		text = *req.Recipe
	}

	saved, err := h.store.Save(r.Context(), req.Name, text)
	if err != nil {
		if errors.Is(err, recipe.ErrInvalidName) {
			ws.Alert(workspace.SeverityDanger, msgEnterName, alertDuration)
			http.Error(w, msgEnterName, http.StatusBadRequest)
			return
		}
		logger.FromContext(r.Context()).Error("save recipe failed", "workspace", ws.ID, "error", err)
		http.Error(w, "failed to save recipe", http.StatusInternalServerError)
		return
	}
	ws.Alert(workspace.SeveritySuccess, "Recipe saved as \""+saved.Name+"\".", alertDuration)
	writeJSON(w, http.StatusCreated, saved)
}

// loadWorkspaceRecipe applies recipe text to the workspace. The text comes
// either from the request or from a saved recipe selected by id.
func (h *handler) loadWorkspaceRecipe(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req struct {
		ID     *int   `json:"id"`
		Recipe string `json:"recipe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	text := req.Recipe
	if req.ID != nil {
		saved, err := h.store.Find(r.Context(), *req.ID)
		if err != nil {
			if errors.Is(err, recipe.ErrNotFound) {
				http.Error(w, "recipe not found", http.StatusNotFound)
				return
			}
			logger.FromContext(r.Context()).Error("find recipe failed", "id", *req.ID, "error", err)
			http.Error(w, "failed to load recipe", http.StatusInternalServerError)
			return
		}
		text = saved.Recipe
	}

	if err := loadRecipeText(ws, text); err != nil {
		http.Error(w, msgInvalidRecipe, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ws.Snapshot())
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	text := recipe.BugReport(recipe.ReportInfo{
		BaseURL:   h.opts.ReportBaseURL,
		Recipe:    ws.RecipeConfig(),
		Input:     ws.Input(),
		Version:   h.opts.Version,
		UserAgent: r.UserAgent(),
	})
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// boolQuery reads an optional boolean query parameter that defaults to true.
func boolQuery(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter", name)
	}
	return b, nil
}
