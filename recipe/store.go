package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"recipe-desk/kv"
	"recipe-desk/logger"
)

// Slot names in the key-value collaborator.
const (
	SavedRecipesKey = "savedRecipes"
	RecipeIDKey     = "recipeId"
)

// Store is an ordered list of named recipes kept in two kv slots: the JSON
// list and the last allocated id. mu serialises read-modify-write cycles
// within this process; writers in other processes are not guarded against
// and the last write wins.
type Store struct {
	mu sync.Mutex
	kv kv.Store
}

func NewStore(slots kv.Store) *Store {
	return &Store{kv: slots}
}

// List returns saved recipes in insertion order. An unreadable list is logged
// and reported as empty.
func (s *Store) List(ctx context.Context) ([]SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx)
	if errors.Is(err, ErrMalformedSerialization) {
		logger.FromContext(ctx).Warn("saved recipes unreadable, treating as empty", "error", err)
		return []SavedRecipe{}, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Entries is List without the recovery: malformed text is returned as an
// error wrapping ErrMalformedSerialization.
func (s *Store) Entries(ctx context.Context) ([]SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readList(ctx)
}

// Save appends a new recipe with a freshly allocated id. Names are not
// deduplicated.
func (s *Store) Save(ctx context.Context, name, recipeText string) (SavedRecipe, error) {
	if name == "" {
		return SavedRecipe{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	list, err := s.readList(ctx)
	if errors.Is(err, ErrMalformedSerialization) {
		log.Warn("saved recipes unreadable, starting a new list", "error", err)
		list = []SavedRecipe{}
	} else if err != nil {
		return SavedRecipe{}, err
	}

	last, err := s.readCounter(ctx)
	if err != nil {
		return SavedRecipe{}, err
	}
	for _, r := range list {
		if r.ID > last {
			last = r.ID
		}
	}

	entry := SavedRecipe{ID: last + 1, Name: name, Recipe: recipeText}
	if err := s.kv.Set(ctx, RecipeIDKey, strconv.Itoa(entry.ID)); err != nil {
		return SavedRecipe{}, fmt.Errorf("write recipe counter: %w", err)
	}
	if err := s.writeList(ctx, append(list, entry)); err != nil {
		return SavedRecipe{}, err
	}
	log.Debug("recipe saved", "id", entry.ID, "name", name)
	return entry, nil
}

// Delete removes the recipe with id. Unknown ids are not an error.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx)
	if errors.Is(err, ErrMalformedSerialization) {
		// Nothing in an unreadable list can match; leave it for Save to replace.
		logger.FromContext(ctx).Warn("saved recipes unreadable, nothing to delete", "id", id, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return s.writeList(ctx, kept)
}

// Find returns the recipe with id, or ErrNotFound.
func (s *Store) Find(ctx context.Context, id int) (SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readList(ctx)
	if err != nil && !errors.Is(err, ErrMalformedSerialization) {
		return SavedRecipe{}, err
	}
	for _, r := range list {
		if r.ID == id {
			return r, nil
		}
	}
	return SavedRecipe{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// readList returns an empty slice when the slot is unset or blank.
// Caller must hold s.mu.
func (s *Store) readList(ctx context.Context) ([]SavedRecipe, error) {
	text, ok, err := s.kv.Get(ctx, SavedRecipesKey)
	if err != nil {
		return nil, fmt.Errorf("read saved recipes: %w", err)
	}
	list := []SavedRecipe{}
	if !ok || strings.TrimSpace(text) == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("%w: saved recipes: %v", ErrMalformedSerialization, err)
	}
	if list == nil {
		list = []SavedRecipe{}
	}
	return list, nil
}

// readCounter treats an unset or unparsable counter as zero; Save also
// consults the list so ids keep increasing either way.
func (s *Store) readCounter(ctx context.Context) (int, error) {
	text, ok, err := s.kv.Get(ctx, RecipeIDKey)
	if err != nil {
		return 0, fmt.Errorf("read recipe counter: %w", err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		logger.FromContext(ctx).Warn("recipe counter unreadable, recovering from list", "value", text)
		return 0, nil
	}
	return n, nil
}

func (s *Store) writeList(ctx context.Context, list []SavedRecipe) error {
	b, err := marshalJSON(list)
	if err != nil {
		return fmt.Errorf("encode saved recipes: %w", err)
	}
	if err := s.kv.Set(ctx, SavedRecipesKey, string(b)); err != nil {
		return fmt.Errorf("write saved recipes: %w", err)
	}
	return nil
}
