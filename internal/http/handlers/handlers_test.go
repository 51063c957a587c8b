package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/catalogue"
	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/http/handlers"
	"github.com/Mas3oood/Bovali/internal/http/httpapi"
	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/infra"
	"github.com/Mas3oood/Bovali/internal/providers/drive"
	"github.com/Mas3oood/Bovali/internal/providers/gemini"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type stubGenerator struct {
	result     *gemini.Result
	editResult *asset.Image
	editText   string
	err        error
}

func (s *stubGenerator) Generate(context.Context, string, []asset.Image) (*gemini.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubGenerator) EditImage(context.Context, string, asset.Image) (*asset.Image, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.editResult, s.editText, nil
}

type stubBatcher struct {
	out []asset.Image
	err error
}

func (s *stubBatcher) GenerateBatch(context.Context, string, []asset.Image, int) ([]asset.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

type stubDialogue struct {
	reply string
	err   error
}

func (s *stubDialogue) Send(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubLister struct {
	folders map[string][]drive.Folder
	files   map[string][]drive.File
}

func (s *stubLister) ListFolders(_ context.Context, parentID string) ([]drive.Folder, error) {
	return s.folders[parentID], nil
}

func (s *stubLister) ListImageFiles(_ context.Context, parentID string) ([]drive.File, error) {
	return s.files[parentID], nil
}

type stubDownloader struct {
	images map[string]*asset.Image
}

func (s *stubDownloader) Download(_ context.Context, fileID string) (*asset.Image, error) {
	img, ok := s.images[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return img, nil
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestApp(t *testing.T, backends studio.Backends, downloader handlers.Downloader) http.Handler {
	t.Helper()
	cfg := &infra.Config{
		AppEnv:            "test",
		GeminiAPIKey:      "test-key",
		DriveAPIKey:       "test-key",
		DriveRootFolderID: "root",
		AllowedOrigins:    []string{"http://localhost:5173"},
		DefaultLocale:     "en",
		SessionTTL:        time.Hour,
		MaxUploadBytes:    8 << 20,
		RateLimitPerMin:   1000,
	}
	logger := zerolog.New(io.Discard)
	registry := studio.NewRegistry(cfg.SessionTTL, backends, &logger)
	gallery := history.NewGallery(newMemStore(), &logger)
	app := handlers.NewApp(cfg, &logger, registry, gallery, downloader)
	return httpapi.NewRouter(app, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) studio.Snapshot {
	t.Helper()
	var snap studio.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v (body %s)", err, rec.Body.String())
	}
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (body %s)", err, rec.Body.String())
	}
	return body.Error, body.Message
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/sessions", nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d", rec.Code)
	}
	snap := decodeSnapshot(t, rec)
	if snap.ID == "" {
		t.Fatal("expected a session id")
	}
	return snap.ID
}

func uploadBody(content, mime string) map[string]string {
	return map[string]string{"data_uri": asset.FromBytes([]byte(content), mime).DataURI()}
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)

	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/v1/sessions/"+sid, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}
	snap := decodeSnapshot(t, rec)
	if snap.Active != studio.WorkflowGenerator {
		t.Fatalf("expected generator active by default, got %q", snap.Active)
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/sessions/"+sid, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete session status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/v1/sessions/"+sid, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSlotUploadAndPreview(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodPut, "/v1/sessions/"+sid+"/generator/slots/render_shot", uploadBody("room-photo", "image/png"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slot upload status = %d (%s)", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Generator.RenderShot == nil || snap.Generator.RenderShot.PreviewID == "" {
		t.Fatal("expected an occupied render shot slot")
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/sessions/"+sid+"/previews/"+snap.Generator.RenderShot.PreviewID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("preview content type = %q", got)
	}
	if rec.Body.String() != "room-photo" {
		t.Fatalf("preview bytes = %q", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/sessions/"+sid+"/generator/slots/render_shot", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slot delete status = %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec); snap.Generator.RenderShot != nil {
		t.Fatal("expected the slot cleared")
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodPut, "/v1/sessions/"+sid+"/generator/slots/render_shot", uploadBody("hello", "text/plain"), nil)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestGenerateFlow(t *testing.T) {
	batcher := &stubBatcher{out: []asset.Image{*asset.FromBytes([]byte("v1"), "image/png"), *asset.FromBytes([]byte("v2"), "image/png")}}
	router := newTestApp(t, studio.Backends{Batch: batcher}, nil)
	sid := createSession(t, router)
	base := "/v1/sessions/" + sid

	for slot, content := range map[string]string{"render_shot": "room", "pattern": "herringbone"} {
		rec := doJSON(t, router, http.MethodPut, base+"/generator/slots/"+slot, uploadBody(content, "image/png"), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("upload %s status = %d", slot, rec.Code)
		}
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/generator/materials", uploadBody("oak", "image/jpeg"), nil); rec.Code != http.StatusOK {
		t.Fatalf("material upload status = %d", rec.Code)
	}
	opts := map[string]any{"surface": "walls", "mode": "pattern_and_material", "variations": 2, "instruction": "soft light"}
	if rec := doJSON(t, router, http.MethodPut, base+"/generator/options", opts, nil); rec.Code != http.StatusOK {
		t.Fatalf("options status = %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, base+"/generator/generate", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d (%s)", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if len(snap.Generator.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(snap.Generator.Outputs))
	}
	if snap.Generator.Selected != 0 {
		t.Fatalf("expected first variation selected, got %d", snap.Generator.Selected)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/generator/select", map[string]int{"index": 1}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("select status = %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec); snap.Generator.Selected != 1 {
		t.Fatalf("expected selection 1, got %d", snap.Generator.Selected)
	}
}

func TestGenerateValidationIsLocalized(t *testing.T) {
	batcher := &stubBatcher{out: []asset.Image{*asset.FromBytes([]byte("v1"), "image/png")}}
	router := newTestApp(t, studio.Backends{Batch: batcher}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/generator/generate", nil, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if _, msg := decodeError(t, rec); msg != i18n.T(i18n.LocaleEnglish, i18n.KeyUploadRenderShot) {
		t.Fatalf("unexpected English message %q", msg)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/generator/generate", nil, map[string]string{"X-Locale": "ar"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if _, msg := decodeError(t, rec); msg != i18n.T(i18n.LocaleArabic, i18n.KeyUploadRenderShot) {
		t.Fatalf("unexpected Arabic message %q", msg)
	}
}

func TestSubmitWithoutBackendIs503(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/generator/generate", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	code, _ := decodeError(t, rec)
	if code != "backend_unconfigured" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestWorkflowSwitchEndpoint(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/workflow", map[string]string{"workflow": "studio"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("switch status = %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec); snap.Active != studio.WorkflowStudio {
		t.Fatalf("expected studio active, got %q", snap.Active)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/workflow", map[string]string{"workflow": "painter"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown workflow, got %d", rec.Code)
	}
}

func TestChatFlow(t *testing.T) {
	dialogue := &stubDialogue{reply: "Happy to help with your floors."}
	router := newTestApp(t, studio.Backends{NewDialogue: func() studio.Dialogue { return dialogue }}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/chat", map[string]string{"text": "what suits a kitchen?"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Transcript []studio.ChatTurn `json:"transcript"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	if len(resp.Transcript) != 2 || resp.Transcript[1].Text != dialogue.reply {
		t.Fatalf("unexpected transcript %+v", resp.Transcript)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/sessions/"+sid+"/chat", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transcript status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/sessions/"+sid+"/chat", map[string]string{"text": "   "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}
}

func TestChatEditsSelectedVariation(t *testing.T) {
	edited := asset.FromBytes([]byte("edited"), "image/png")
	generator := &stubGenerator{editResult: edited, editText: "Done, darker grout."}
	batcher := &stubBatcher{out: []asset.Image{*asset.FromBytes([]byte("v1"), "image/png")}}
	router := newTestApp(t, studio.Backends{Generator: generator, Batch: batcher}, nil)
	sid := createSession(t, router)
	base := "/v1/sessions/" + sid

	for slot, content := range map[string]string{"render_shot": "room", "pattern": "chevron"} {
		if rec := doJSON(t, router, http.MethodPut, base+"/generator/slots/"+slot, uploadBody(content, "image/png"), nil); rec.Code != http.StatusOK {
			t.Fatalf("upload %s status = %d", slot, rec.Code)
		}
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/generator/materials", uploadBody("walnut", "image/png"), nil); rec.Code != http.StatusOK {
		t.Fatalf("material status = %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/generator/generate", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d (%s)", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodPost, base+"/chat", map[string]string{"text": "make the grout darker"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Transcript []studio.ChatTurn `json:"transcript"`
		Session    studio.Snapshot   `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	if len(resp.Transcript) != 2 || resp.Transcript[1].Text != "Done, darker grout." {
		t.Fatalf("unexpected transcript %+v", resp.Transcript)
	}
	if len(resp.Session.Generator.Outputs) != 1 || resp.Session.Generator.Outputs[0] != edited.DataURI() {
		t.Fatal("expected the canvas replaced by the edited image")
	}
}

func TestExportsLifecycle(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	design := uploadBody("finished-design", "image/png")

	rec := doJSON(t, router, http.MethodPost, "/v1/exports", design, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first export status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/exports", design, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate export status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/exports", nil, nil)
	var list struct {
		Exports []history.Entry `json:"exports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode exports: %v", err)
	}
	if len(list.Exports) != 1 {
		t.Fatalf("expected the duplicate collapsed, got %d entries", len(list.Exports))
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/exports/archive", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("archive content type = %q", got)
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/exports/0", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/v1/exports/archive", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 archive on empty gallery, got %d", rec.Code)
	}
}

func TestHistoryListAndUse(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	sid := createSession(t, router)
	base := "/v1/sessions/" + sid

	pattern := asset.FromBytes([]byte("azulejo"), "image/png")
	rec := doJSON(t, router, http.MethodPut, base+"/generator/slots/pattern", map[string]string{"data_uri": pattern.DataURI()}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, base+"/history/patterns", nil, nil)
	var hist struct {
		Entries []history.Entry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Entries) != 1 || hist.Entries[0].DataURI != pattern.Identity() {
		t.Fatalf("unexpected history %+v", hist.Entries)
	}

	if rec := doJSON(t, router, http.MethodDelete, base+"/generator/slots/pattern", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}

	use := map[string]string{"identity": pattern.Identity(), "slot": "pattern"}
	rec = doJSON(t, router, http.MethodPost, base+"/history/patterns/use", use, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("use status = %d (%s)", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec); snap.Generator.Pattern == nil {
		t.Fatal("expected pattern slot refilled from history")
	}

	rec = doJSON(t, router, http.MethodGet, base+"/history/unknown", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rec.Code)
	}
}

func TestCatalogueRequiresDrive(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	sid := createSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/v1/sessions/"+sid+"/catalogue", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without drive backend, got %d", rec.Code)
	}
}

func TestCatalogueBrowseAndImport(t *testing.T) {
	lister := &stubLister{
		folders: map[string][]drive.Folder{
			"root": {{ID: "wood", Name: "Wood"}},
		},
		files: map[string][]drive.File{
			"wood": {{ID: "oak-1", Name: "oak.png", MimeType: "image/png"}},
		},
	}
	downloader := &stubDownloader{images: map[string]*asset.Image{
		"oak-1": asset.FromBytes([]byte("oak-texture"), "image/png"),
	}}
	backends := studio.Backends{
		NewCatalog: func() *catalogue.Navigator {
			return catalogue.NewNavigator(lister, "root", "Catalogue")
		},
	}
	router := newTestApp(t, backends, downloader)
	sid := createSession(t, router)
	base := "/v1/sessions/" + sid + "/catalogue"

	rec := doJSON(t, router, http.MethodGet, base, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalogue status = %d (%s)", rec.Code, rec.Body.String())
	}
	var view struct {
		Breadcrumbs []catalogue.Crumb  `json:"breadcrumbs"`
		Listing     *catalogue.Listing `json:"listing"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode catalogue: %v", err)
	}
	if view.Listing == nil || len(view.Listing.Folders) != 1 {
		t.Fatalf("expected the root listing, got %+v", view.Listing)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/enter", map[string]string{"folder_id": "wood", "name": "Wood"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("enter status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode catalogue: %v", err)
	}
	if len(view.Breadcrumbs) != 2 || len(view.Listing.Files) != 1 {
		t.Fatalf("expected wood folder listing, got %+v", view)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/import", map[string]string{"file_id": "oak-1", "slot": "render_shot"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d (%s)", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec); snap.Generator.RenderShot == nil {
		t.Fatal("expected imported file in the render shot slot")
	}

	rec = doJSON(t, router, http.MethodPost, base+"/jump", map[string]int{"depth": 0}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("jump status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode catalogue: %v", err)
	}
	if len(view.Breadcrumbs) != 1 {
		t.Fatalf("expected trail truncated to root, got %d crumbs", len(view.Breadcrumbs))
	}
}

func TestExtractorProcessAndSendOutput(t *testing.T) {
	tile := asset.FromBytes([]byte("clean-tile"), "image/png")
	generator := &stubGenerator{result: &gemini.Result{Image: tile}}
	router := newTestApp(t, studio.Backends{Generator: generator}, nil)
	sid := createSession(t, router)
	base := "/v1/sessions/" + sid

	rec := doJSON(t, router, http.MethodPost, base+"/workflow", map[string]string{"workflow": "extractor"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("switch status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPut, base+"/extractor/slots/source", uploadBody("messy-photo", "image/png"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("source upload status = %d (%s)", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPut, base+"/extractor/options", map[string]string{"kind": "pattern"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("options status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, base+"/extractor/process", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d (%s)", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec); snap.Extractor.Output != tile.DataURI() {
		t.Fatal("expected the extracted tile on the canvas")
	}

	rec = doJSON(t, router, http.MethodPost, base+"/outputs/send", map[string]string{"workflow": "generator", "slot": "pattern"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("send status = %d (%s)", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Active != studio.WorkflowGenerator {
		t.Fatalf("expected generator active after send, got %q", snap.Active)
	}
	if snap.Generator.Pattern == nil {
		t.Fatal("expected the tile handed to the pattern slot")
	}
	if snap.Extractor.Output != "" {
		t.Fatal("expected the extractor canvas voided after send")
	}
}

func TestStudioSynthesizeFlow(t *testing.T) {
	swatch := asset.FromBytes([]byte("woven-swatch"), "image/png")
	generator := &stubGenerator{result: &gemini.Result{Image: swatch}}
	router := newTestApp(t, studio.Backends{Generator: generator}, nil)
	sid := createSession(t, router)
	base := "/v1/sessions/" + sid

	if rec := doJSON(t, router, http.MethodPost, base+"/workflow", map[string]string{"workflow": "studio"}, nil); rec.Code != http.StatusOK {
		t.Fatalf("switch status = %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, base+"/studio/synthesize", nil, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without a description, got %d", rec.Code)
	}

	opts := map[string]any{"description": "basket weave in terracotta", "dimensions": map[string]any{"width": 60, "height": 60, "unit": "cm"}}
	if rec := doJSON(t, router, http.MethodPut, base+"/studio/options", opts, nil); rec.Code != http.StatusOK {
		t.Fatalf("options status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, base+"/studio/synthesize", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("synthesize status = %d (%s)", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec); snap.Studio.Output != swatch.DataURI() {
		t.Fatal("expected the synthesized swatch on the canvas")
	}
}

func TestConfigStatusReportsMissingBackends(t *testing.T) {
	cfg := &infra.Config{
		AppEnv:          "test",
		GeminiAPIKey:    "test-key",
		AllowedOrigins:  []string{"http://localhost:5173"},
		DefaultLocale:   "en",
		SessionTTL:      time.Hour,
		MaxUploadBytes:  8 << 20,
		RateLimitPerMin: 1000,
	}
	logger := zerolog.New(io.Discard)
	registry := studio.NewRegistry(cfg.SessionTTL, studio.Backends{}, &logger)
	gallery := history.NewGallery(newMemStore(), &logger)
	app := handlers.NewApp(cfg, &logger, registry, gallery, nil)
	router := httpapi.NewRouter(app, nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/config/status", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status struct {
		Gemini  bool     `json:"gemini"`
		Drive   bool     `json:"drive"`
		Missing []string `json:"missing"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Gemini || status.Drive {
		t.Fatalf("unexpected readiness %+v", status)
	}
	if len(status.Missing) == 0 {
		t.Fatal("expected missing credentials listed")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestApp(t, studio.Backends{}, nil)
	rec := doJSON(t, router, http.MethodGet, "/v1/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}
