package testsupport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// collection is an ordered in-memory table. Callers hold FakeAPI.mu.
type collection[T any] struct {
	order []api.ID
	items map[api.ID]T
	idOf  func(T) api.ID
}

func newCollection[T any](seed []T, idOf func(T) api.ID) *collection[T] {
	c := &collection[T]{items: make(map[api.ID]T), idOf: idOf}
	for _, item := range seed {
		c.put(item)
	}
	return c
}

func (c *collection[T]) put(item T) {
	id := c.idOf(item)
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

func (c *collection[T]) get(id api.ID) (T, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) remove(id api.ID) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) len() int { return len(c.order) }

// mountCRUD serves list and detail reads under readBase and create, update
// and delete under writeBase. Both bases end in "/".
func mountCRUD[T any](r chi.Router, f *FakeAPI, c *collection[T], readBase, writeBase string) {
	r.Get(readBase, func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": c.list()})
	})
	r.Get(readBase+"{id}", func(w http.ResponseWriter, req *http.Request) { getItem(w, req, f, c) })
	r.Post(writeBase, func(w http.ResponseWriter, req *http.Request) { createItem(w, req, f, c) })
	r.Put(writeBase+"{id}", func(w http.ResponseWriter, req *http.Request) { updateItem(w, req, f, c) })
	r.Delete(writeBase+"{id}", func(w http.ResponseWriter, req *http.Request) { deleteItem(w, req, f, c) })
}

func getItem[T any](w http.ResponseWriter, r *http.Request, f *FakeAPI, c *collection[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := c.get(api.ID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// createItem decodes the payload into a record, since payload and record
// share JSON field names, and assigns a fresh id.
func createItem[T any](w http.ResponseWriter, r *http.Request, f *FakeAPI, c *collection[T]) {
	var fields map[string]any
	if !decode(w, r, &fields) {
		return
	}
	fields["id"] = uuid.NewString()
	fields["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	item, err := fromFields[T](fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c.put(item)
	writeJSON(w, http.StatusCreated, item)
}

// updateItem merges the fields present in the payload into the record.
func updateItem[T any](w http.ResponseWriter, r *http.Request, f *FakeAPI, c *collection[T]) {
	var patch map[string]any
	if !decode(w, r, &patch) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := api.ID(chi.URLParam(r, "id"))
	current, ok := c.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	fields, err := toFields(current)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for k, v := range patch {
		fields[k] = v
	}
	fields["id"] = id.String()
	fields["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := fromFields[T](fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.put(updated)
	writeJSON(w, http.StatusOK, updated)
}

func deleteItem[T any](w http.ResponseWriter, r *http.Request, f *FakeAPI, c *collection[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !c.remove(api.ID(chi.URLParam(r, "id"))) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	err = json.Unmarshal(data, &fields)
	return fields, err
}

func fromFields[T any](fields map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

// tokenWithClaims signs a JWT carrying the user's identity, for logins that
// return no user object.
func tokenWithClaims(user api.AuthUser) string {
	claims := jwt.MapClaims{
		"sub":     user.ID.String(),
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"isAdmin": user.IsAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("fake-api"))
	if err != nil {
		panic(err)
	}
	return token
}
