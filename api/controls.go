package api

import (
	"errors"
	"fmt"

	"recipe-desk/recipe"
	"recipe-desk/workspace"
)

var errUnknownControl = errors.New("unknown control")

// controlMessage is a control action from the browser, sent over the
// websocket or POSTed to /controls.
type controlMessage struct {
	Type   string `json:"type"`
	Value  bool   `json:"value,omitempty"`
	Index  int    `json:"index,omitempty"`
	Recipe string `json:"recipe,omitempty"`
}

func applyControl(ws *workspace.Workspace, msg controlMessage) error {
	switch msg.Type {
	case "bake":
		ws.Bake(false)
	case "step":
		ws.Bake(true)
	case "auto-bake":
		ws.SetAutoBake(msg.Value)
	case "clear-recipe":
		ws.ClearRecipe()
	case "clear-breaks":
		ws.ClearBreakpoints()
	case "breakpoint":
		ws.SetBreakpoint(msg.Index, msg.Value)
	case "set-recipe":
		return loadRecipeText(ws, msg.Recipe)
	default:
		return fmt.Errorf("%w: %q", errUnknownControl, msg.Type)
	}
	return nil
}

// loadRecipeText parses and applies text, alerting the user when it is not
// a valid recipe.
func loadRecipeText(ws *workspace.Workspace, text string) error {
	cfg, err := recipe.ParseConfig(text)
	if err != nil {
		ws.Alert(workspace.SeverityDanger, msgInvalidRecipe, alertDuration)
		return err
	}
	ws.SetRecipeConfig(cfg)
	return nil
}
