package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"recipe-desk/recipe"
)

const msgInvalidRecipe = "Invalid recipe"

type linkRequest struct {
	Recipe        string `json:"recipe"`
	Input         string `json:"input"`
	IncludeRecipe bool   `json:"include_recipe"`
	IncludeInput  bool   `json:"include_input"`
	BaseURL       string `json:"base_url"`
}

type linkResponse struct {
	Link    string `json:"link"`
	Display string `json:"display"`
}

func newLinkResponse(link string) linkResponse {
	return linkResponse{Link: link, Display: recipe.Truncate(link, recipe.DisplayLinkLength)}
}

// createLink builds a link from the recipe text as the user edited it in the
// save dialog. Blank text is an empty recipe.
func (h *handler) createLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := recipe.Config{}
	if strings.TrimSpace(req.Recipe) != "" {
		parsed, err := recipe.ParseConfig(req.Recipe)
		if err != nil {
			http.Error(w, msgInvalidRecipe, http.StatusBadRequest)
			return
		}
		cfg = parsed
	}

	base := h.baseAddress(r, req.BaseURL)
	link := recipe.BuildShareableLink(base, cfg, []byte(req.Input), req.IncludeRecipe, req.IncludeInput)
	writeJSON(w, http.StatusOK, newLinkResponse(link))
}
