package workspace

import (
	"sort"
	"sync"
	"time"

	"recipe-desk/recipe"
)

// Event types pushed to the connected client.
const (
	EventState       = "state"
	EventBake        = "bake"
	EventAutoBake    = "auto-bake"
	EventRecipe      = "recipe"
	EventBreakpoints = "breakpoints"
	EventAlert       = "alert"
	EventClosed      = "closed"
)

// Alert severities.
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// Event is one control or notification message for the browser. Recipe is
// set only on recipe events, where an empty recipe still encodes as [].
type Event struct {
	Type        string         `json:"type"`
	Step        bool           `json:"step,omitempty"`
	Value       bool           `json:"value,omitempty"`
	Recipe      *recipe.Config `json:"recipe,omitempty"`
	Breakpoints []int          `json:"breakpoints,omitempty"`
	Severity    string         `json:"severity,omitempty"`
	Message     string         `json:"message,omitempty"`
	DurationMS  int64          `json:"duration_ms,omitempty"`
	State       *Snapshot      `json:"state,omitempty"`
}

// Snapshot is the client-visible state of a workspace.
type Snapshot struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Recipe      recipe.Config `json:"recipe"`
	InputLength int           `json:"input_length"`
	AutoBake    bool          `json:"auto_bake"`
	Breakpoints []int         `json:"breakpoints"`
	Connected   bool          `json:"connected"`
}

// Info is a point-in-time copy of a workspace's listing fields.
type Info struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Connected  bool      `json:"connected"`
}

// Workspace is one browser tab's controls state. ID, Name and CreatedAt never
// change after creation; everything else is read through methods.
type Workspace struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu          sync.Mutex
	lastActive  time.Time
	recipe      recipe.Config
	input       []byte
	autoBake    bool
	breakpoints map[int]bool

	outMu     sync.Mutex
	connected bool
	outChan   chan Event
	kickChan  chan struct{}
	done      chan struct{}
}

func newWorkspace(id, name string) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:          id,
		Name:        name,
		CreatedAt:   now,
		lastActive:  now,
		recipe:      recipe.Config{},
		breakpoints: make(map[int]bool),
		done:        make(chan struct{}),
	}
}

// RecipeConfig returns a copy of the current recipe.
func (w *Workspace) RecipeConfig() recipe.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append(recipe.Config{}, w.recipe...)
}

// SetRecipeConfig replaces the recipe. Breakpoints past the end of the new
// recipe are dropped.
func (w *Workspace) SetRecipeConfig(cfg recipe.Config) {
	w.mu.Lock()
	w.recipe = append(recipe.Config{}, cfg...)
	for i := range w.breakpoints {
		if i >= len(w.recipe) {
			delete(w.breakpoints, i)
		}
	}
	cp := append(recipe.Config{}, w.recipe...)
	w.touch()
	w.mu.Unlock()

	w.emit(Event{Type: EventRecipe, Recipe: &cp})
}

// ClearRecipe removes all operations and their breakpoints.
func (w *Workspace) ClearRecipe() {
	w.mu.Lock()
	w.recipe = recipe.Config{}
	w.breakpoints = make(map[int]bool)
	w.touch()
	w.mu.Unlock()

	empty := recipe.Config{}
	w.emit(Event{Type: EventRecipe, Recipe: &empty})
}

// Input returns a copy of the current input payload.
func (w *Workspace) Input() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]byte(nil), w.input...)
}

func (w *Workspace) SetInput(b []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = append([]byte(nil), b...)
	w.touch()
}

// Bake asks the client to run the recipe; step runs only the next operation.
func (w *Workspace) Bake(step bool) {
	w.mu.Lock()
	w.touch()
	w.mu.Unlock()
	w.emit(Event{Type: EventBake, Step: step})
}

// SetAutoBake reports whether the value changed. No event is sent when it
// did not.
func (w *Workspace) SetAutoBake(v bool) bool {
	w.mu.Lock()
	if w.autoBake == v {
		w.mu.Unlock()
		return false
	}
	w.autoBake = v
	w.touch()
	w.mu.Unlock()

	w.emit(Event{Type: EventAutoBake, Value: v})
	return true
}

func (w *Workspace) AutoBake() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.autoBake
}

// SetBreakpoint toggles the breakpoint on operation i. Indices outside the
// recipe are ignored.
func (w *Workspace) SetBreakpoint(i int, on bool) {
	w.mu.Lock()
	if i < 0 || i >= len(w.recipe) {
		w.mu.Unlock()
		return
	}
	if on {
		w.breakpoints[i] = true
	} else {
		delete(w.breakpoints, i)
	}
	bps := w.sortedBreakpoints()
	w.touch()
	w.mu.Unlock()

	w.emit(Event{Type: EventBreakpoints, Breakpoints: bps})
}

func (w *Workspace) ClearBreakpoints() {
	w.mu.Lock()
	w.breakpoints = make(map[int]bool)
	w.touch()
	w.mu.Unlock()

	w.emit(Event{Type: EventBreakpoints, Breakpoints: []int{}})
}

func (w *Workspace) Breakpoints() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sortedBreakpoints()
}

// Alert shows a transient notification in the client.
func (w *Workspace) Alert(severity, message string, d time.Duration) {
	w.emit(Event{
		Type:       EventAlert,
		Severity:   severity,
		Message:    message,
		DurationMS: d.Milliseconds(),
	})
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	snap := Snapshot{
		ID:          w.ID,
		Name:        w.Name,
		Recipe:      append(recipe.Config{}, w.recipe...),
		InputLength: len(w.input),
		AutoBake:    w.autoBake,
		Breakpoints: w.sortedBreakpoints(),
	}
	w.mu.Unlock()

	snap.Connected = w.Connected()
	return snap
}

// Info copies the listing fields under the workspace locks.
func (w *Workspace) Info() Info {
	w.mu.Lock()
	last := w.lastActive
	w.mu.Unlock()
	return Info{
		ID:         w.ID,
		Name:       w.Name,
		CreatedAt:  w.CreatedAt,
		LastActive: last,
		Connected:  w.Connected(),
	}
}

// Connected reports whether a client is subscribed.
func (w *Workspace) Connected() bool {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	return w.connected
}

// Subscribe registers a channel to receive events. A previously subscribed
// client is kicked: its kick channel is closed so the websocket handler can
// drop that connection. Returns the kick channel for this client.
func (w *Workspace) Subscribe(ch chan Event) <-chan struct{} {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	if w.kickChan != nil {
		close(w.kickChan)
	}
	kick := make(chan struct{})
	w.kickChan = kick
	w.outChan = ch
	w.connected = true
	return kick
}

// Unsubscribe only clears state if ch is still the current owner, so a
// displaced connection cannot clear a newer one. It always closes ch.
func (w *Workspace) Unsubscribe(ch chan Event) {
	w.outMu.Lock()
	owned := w.outChan == ch
	if owned {
		w.outChan = nil
		w.connected = false
		w.kickChan = nil
	}
	w.outMu.Unlock()
	close(ch)
}

// Done is closed when the workspace is closed.
func (w *Workspace) Done() <-chan struct{} {
	return w.done
}

// emit delivers without blocking; a full or missing channel drops the event.
func (w *Workspace) emit(e Event) {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	if w.outChan == nil {
		return
	}
	select {
	case w.outChan <- e:
	default:
	}
}

// Caller must hold w.mu.
func (w *Workspace) touch() {
	w.lastActive = time.Now()
}

// Caller must hold w.mu.
func (w *Workspace) sortedBreakpoints() []int {
	out := make([]int, 0, len(w.breakpoints))
	for i := range w.breakpoints {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
