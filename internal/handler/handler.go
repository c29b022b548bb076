package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"
	"strconv"

	"floorlink/internal/catalog"
	"floorlink/internal/content"
	"floorlink/internal/diagram"
	"floorlink/internal/discovery"
	"floorlink/internal/domain"
	"floorlink/internal/editor"
	"floorlink/internal/repository"
	"floorlink/internal/service"
)

// MaxUploadSize bounds content and project uploads.
const MaxUploadSize = 64 << 20

// Handler serves the session API.
type Handler struct {
	svc    *service.Session
	events http.Handler
	scan   []discovery.Option
}

// New creates a handler. events serves GET /events and may be nil.
func New(svc *service.Session, events http.Handler) *Handler {
	return &Handler{svc: svc, events: events}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/snapshot", h.GetSnapshot)
	mux.HandleFunc("POST /api/items", h.PlaceItem)
	mux.HandleFunc("PUT /api/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.DeleteItem)
	mux.HandleFunc("POST /api/select", h.Select)
	mux.HandleFunc("POST /api/zoom", h.Zoom)

	mux.HandleFunc("GET /api/diagram", h.GetDiagram)
	mux.HandleFunc("GET /api/diagram.dot", h.ExportDiagram("dot", "text/vnd.graphviz"))
	mux.HandleFunc("GET /api/diagram.png", h.ExportDiagram("png", "image/png"))
	mux.HandleFunc("POST /api/diagram/tap", h.Tap)
	mux.HandleFunc("GET /api/overlay.png", h.GetOverlay)
	mux.HandleFunc("GET /api/render.png", h.GetRender)

	mux.HandleFunc("GET /api/editor", h.GetEditor)
	mux.HandleFunc("POST /api/editor/begin", h.EditField(h.svc.EditBegin))
	mux.HandleFunc("POST /api/editor/commit", h.EditField(h.svc.EditCommit))
	mux.HandleFunc("POST /api/editor/cancel", h.EditField(h.svc.EditCancel))
	mux.HandleFunc("POST /api/editor/draft", h.EditDraft)
	mux.HandleFunc("POST /api/editor/rename", h.EditRename)
	mux.HandleFunc("POST /api/editor/add", h.EditAdd)
	mux.HandleFunc("POST /api/editor/remove", h.EditRemove)
	mux.HandleFunc("POST /api/editor/value", h.EditValue)
	mux.HandleFunc("POST /api/editor/identity", h.EditIdentity)

	mux.HandleFunc("GET /api/catalog", h.ListTypes)
	mux.HandleFunc("POST /api/catalog", h.DefineType)

	mux.HandleFunc("GET /api/content", h.GetContent)
	mux.HandleFunc("POST /api/content", h.LoadContent)

	mux.HandleFunc("POST /api/project/import", h.ImportProject)
	mux.HandleFunc("GET /api/project/export", h.ExportProject)
	mux.HandleFunc("GET /api/projects", h.ListProjects)
	mux.HandleFunc("POST /api/projects/{name}", h.SaveProject)
	mux.HandleFunc("POST /api/projects/{name}/load", h.LoadProject)
	mux.HandleFunc("DELETE /api/projects/{name}", h.DeleteProject)

	mux.HandleFunc("POST /api/discover", h.Discover)

	mux.HandleFunc("GET /ws/pointer", h.PointerSocket)
	if h.events != nil {
		mux.Handle("GET /events", h.events)
	}
	return mux
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ============================================================================
// Items
// ============================================================================

// GetSnapshot returns the registry state.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.fail(w, "Failed to get snapshot", err)
		return
	}
	writeJSON(w, snapshotResponse{
		Items:    snap.Items,
		Selected: snap.Selected,
		Zoom:     snap.Zoom,
		Content:  snap.Content,
	}, http.StatusOK)
}

type snapshotResponse struct {
	Items    []domain.Item      `json:"items"`
	Selected string             `json:"selected,omitempty"`
	Zoom     float64            `json:"zoom"`
	Content  *domain.ContentRef `json:"content,omitempty"`
}

// PlaceRequest drops a catalog type at a document point.
type PlaceRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PlaceItem creates an item from a catalog type.
func (h *Handler) PlaceItem(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.svc.Place(r.Context(), req.Type, domain.Pt(req.X, req.Y))
	if err != nil {
		h.fail(w, "Failed to place item", err)
		return
	}
	writeJSON(w, item, http.StatusCreated)
}

// UpdateRequest is a partial item update. Omitted fields are unchanged;
// properties replace the whole list and keep the order sent.
type UpdateRequest struct {
	Label            *string            `json:"label,omitempty"`
	Type             *string            `json:"type,omitempty"`
	DocumentPosition *domain.Point      `json:"document_position,omitempty"`
	Properties       *domain.Properties `json:"properties,omitempty"`
}

// UpdateItem patches an item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	ok, err := h.svc.UpdateItem(r.Context(), domain.ItemPatch{
		ID:               id,
		Label:            req.Label,
		Type:             req.Type,
		DocumentPosition: req.DocumentPosition,
		Properties:       req.Properties,
	})
	if err != nil {
		h.fail(w, "Failed to update item", err)
		return
	}
	if !ok {
		writeError(w, "Not found", fmt.Sprintf("item %s not found", id), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItem removes an item.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ok, err := h.svc.Remove(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to delete item", err)
		return
	}
	if !ok {
		writeError(w, "Not found", fmt.Sprintf("item %s not found", id), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type idRequest struct {
	ID string `json:"id"`
}

// Select sets the selection; an empty id clears it.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Select(r.Context(), req.ID); err != nil {
		h.fail(w, "Failed to select", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ZoomRequest sets the zoom directly or steps it with "in"/"out".
type ZoomRequest struct {
	Zoom *float64 `json:"zoom,omitempty"`
	Step string   `json:"step,omitempty"`
}

// Zoom changes the zoom factor and returns the stored value.
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		z   float64
		err error
	)
	switch {
	case req.Zoom != nil:
		z, err = h.svc.SetZoom(r.Context(), *req.Zoom)
	case req.Step == "in":
		z, err = h.svc.ZoomIn(r.Context())
	case req.Step == "out":
		z, err = h.svc.ZoomOut(r.Context())
	default:
		writeError(w, "Invalid request body", `expected "zoom" or "step" of "in"/"out"`, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.fail(w, "Failed to zoom", err)
		return
	}
	writeJSON(w, map[string]float64{"zoom": z}, http.StatusOK)
}

// ============================================================================
// Diagram and rendering
// ============================================================================

// GetDiagram returns nodes and edges.
func (h *Handler) GetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Diagram(r.Context())
	if err != nil {
		h.fail(w, "Failed to get diagram", err)
		return
	}
	writeJSON(w, d, http.StatusOK)
}

// ExportDiagram serves the diagram in format.
func (h *Handler) ExportDiagram(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.svc.ExportDiagram(r.Context(), format)
		if err != nil {
			h.fail(w, "Failed to export diagram", err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}
}

// Tap selects the item behind a diagram node.
func (h *Handler) Tap(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decode(w, r, &req) {
		return
	}
	ok, err := h.svc.Tap(r.Context(), req.ID)
	if err != nil {
		h.fail(w, "Failed to tap node", err)
		return
	}
	if !ok {
		writeError(w, "Not found", fmt.Sprintf("node %s not found", req.ID), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOverlay serves the last painted overlay layer.
func (h *Handler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, h.svc.OverlayImage()); err != nil {
		log.Printf("Failed to encode overlay: %v", err)
	}
}

// GetRender serves the document with the overlay on top.
func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := h.svc.Render(r.Context(), w); err != nil {
		log.Printf("Failed to render: %v", err)
	}
}

// ============================================================================
// Editor
// ============================================================================

// FieldRequest names an editor cell: kind is "identity", "key" or "value".
type FieldRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

func (f FieldRequest) ref() (editor.FieldRef, error) {
	switch f.Kind {
	case "identity":
		return editor.Identity(f.Name), nil
	case "key":
		return editor.Key(f.Name), nil
	case "value":
		return editor.Value(f.Name), nil
	}
	return editor.FieldRef{}, fmt.Errorf("%w: kind %q", editor.ErrUnknownField, f.Kind)
}

// GetEditor returns the inspector rows.
func (h *Handler) GetEditor(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Editor(r.Context())
	if err != nil {
		h.fail(w, "Failed to get editor", err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

// EditField applies op to the field named in the body.
func (h *Handler) EditField(op func(context.Context, editor.FieldRef) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FieldRequest
		if !decode(w, r, &req) {
			return
		}
		ref, err := req.ref()
		if err == nil {
			err = op(r.Context(), ref)
		}
		h.editResult(w, r, err)
	}
}

// EditDraft replaces a field's draft with text.
func (h *Handler) EditDraft(w http.ResponseWriter, r *http.Request) {
	var req FieldRequest
	if !decode(w, r, &req) {
		return
	}
	ref, err := req.ref()
	if err == nil {
		err = h.svc.EditInput(r.Context(), ref, req.Text)
	}
	h.editResult(w, r, err)
}

// RenameRequest renames a property; value, when set, replaces the old one.
type RenameRequest struct {
	Old   string  `json:"old"`
	New   string  `json:"new"`
	Value *string `json:"value,omitempty"`
}

// EditRename renames a property in place.
func (h *Handler) EditRename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decode(w, r, &req) {
		return
	}
	h.editResult(w, r, h.svc.Rename(r.Context(), req.Old, req.New, req.Value))
}

type propertyRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EditAdd appends a property.
func (h *Handler) EditAdd(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if !decode(w, r, &req) {
		return
	}
	h.editResult(w, r, h.svc.AddProperty(r.Context(), req.Key, req.Value))
}

// EditRemove deletes a property.
func (h *Handler) EditRemove(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if !decode(w, r, &req) {
		return
	}
	h.editResult(w, r, h.svc.RemoveProperty(r.Context(), req.Key))
}

// EditValue sets a property value.
func (h *Handler) EditValue(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if !decode(w, r, &req) {
		return
	}
	h.editResult(w, r, h.svc.SetValue(r.Context(), req.Key, req.Value))
}

type identityRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EditIdentity sets the label or type.
func (h *Handler) EditIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if !decode(w, r, &req) {
		return
	}
	h.editResult(w, r, h.svc.SetIdentity(r.Context(), req.Name, req.Value))
}

// editResult replies with the refreshed inspector or the edit error.
func (h *Handler) editResult(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.fail(w, "Edit rejected", err)
		return
	}
	h.GetEditor(w, r)
}

// ============================================================================
// Catalog and content
// ============================================================================

// ListTypes returns the item-type catalog.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.Types(r.Context())
	if err != nil {
		h.fail(w, "Failed to list types", err)
		return
	}
	writeJSON(w, types, http.StatusOK)
}

// DefineRequest is a finished type-definition form.
type DefineRequest struct {
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Properties string `json:"properties"`
}

// DefineType adds a type to the catalog.
func (h *Handler) DefineType(w http.ResponseWriter, r *http.Request) {
	var req DefineRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.DefineType(r.Context(), req.Name, req.Icon, req.Properties)
	if err != nil {
		h.fail(w, "Failed to define type", err)
		return
	}
	writeJSON(w, t, http.StatusCreated)
}

type contentResponse struct {
	State  string `json:"state"`
	Handle string `json:"handle,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetContent reports the content load state.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ContentStatus(r.Context())
	if err != nil {
		h.fail(w, "Failed to get content state", err)
		return
	}
	resp := contentResponse{
		State:  st.State.String(),
		Handle: st.Ref.Handle,
		Kind:   string(st.Ref.Kind),
		Name:   st.Ref.Name,
		Width:  st.Width,
		Height: st.Height,
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	writeJSON(w, resp, http.StatusOK)
}

// LoadContent takes the request body as the new document. Query parameters
// kind ("image" or "document"), name and page describe it.
func (h *Handler) LoadContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := domain.ContentKind(q.Get("kind"))
	if kind == "" {
		kind = domain.ContentImage
	}
	page := 0
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			writeError(w, "Invalid page", p, http.StatusBadRequest)
			return
		}
		page = n
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		writeError(w, "Failed to read body", err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		writeError(w, "Empty document", "request body is empty", http.StatusBadRequest)
		return
	}
	ref, err := h.svc.LoadContent(r.Context(), kind, q.Get("name"), page, data)
	if err != nil {
		h.fail(w, "Failed to load content", err)
		return
	}
	writeJSON(w, ref, http.StatusAccepted)
}

// ============================================================================
// Projects
// ============================================================================

// ImportProject replaces the session with the posted project. The format
// query parameter selects the codec (json by default).
func (h *Handler) ImportProject(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	err := h.svc.ImportFrom(r.Context(), format, http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		writeError(w, "Import failed", err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportProject writes the project with the codec for ?format=.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	switch format {
	case "yaml", "yml", "ansible", "ansible-inventory":
		w.Header().Set("Content-Type", "application/x-yaml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	if err := h.svc.ExportTo(r.Context(), format, w); err != nil {
		log.Printf("Failed to export project: %v", err)
		writeError(w, "Export failed", err.Error(), http.StatusBadRequest)
	}
}

// ListProjects lists stored projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListProjects(r.Context())
	if err != nil {
		h.fail(w, "Failed to list projects", err)
		return
	}
	if list == nil {
		list = []repository.ProjectSummary{}
	}
	writeJSON(w, list, http.StatusOK)
}

// SaveProject stores the session under a name.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SaveProject(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, "Failed to save project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadProject replaces the session with a stored project.
func (h *Handler) LoadProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LoadProject(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProject removes a stored project.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, "Failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Helpers
// ============================================================================

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, editor.ErrNoItem):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrNotEditing), errors.Is(err, editor.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrUnknownType),
		errors.Is(err, editor.ErrBlankKey),
		errors.Is(err, editor.ErrIdentityKey),
		errors.Is(err, editor.ErrImmutableID),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, content.ErrUnsupportedKind),
		errors.Is(err, discovery.ErrNoTargets),
		errors.Is(err, discovery.ErrInvalidTarget),
		errors.Is(err, diagram.ErrEmptyGraph):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", msg, err)
	}
	writeError(w, msg, err.Error(), status)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
