package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premiumcars/listingsheet/internal/client"
	"github.com/premiumcars/listingsheet/internal/handler/dto"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/testutil"
)

// apiStub records the drafts it receives and serves record r1.
type apiStub struct {
	mu      sync.Mutex
	created []model.Draft
	updated []model.Draft
	stored  model.Record
}

func newAPIStub(t *testing.T) (*apiStub, *httptest.Server) {
	t.Helper()

	s := &apiStub{stored: model.Record{
		ID:      "r1",
		Title:   "Audi A4",
		Content: model.Content{Price: "25000", Images: []string{"aW1nMQ==", "aW1nMg=="}},
	}}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(client.DefaultCookieName); err != nil || c.Value != "sess_ok" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Unauthorized", Code: "UNAUTHENTICATED"})
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/session", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: client.DefaultCookieName, Value: "sess_ok"})
		_ = json.NewEncoder(w).Encode(dto.SessionResponse{User: dto.UserResponse{ID: "u1", Email: "alice@example.com"}})
	})
	mux.HandleFunc("DELETE /auth/session", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dto.SuccessResponse{Success: true})
	})
	mux.HandleFunc("GET /records/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.stored)
	}))
	mux.HandleFunc("POST /records", authed(func(w http.ResponseWriter, r *http.Request) {
		var d model.Draft
		_ = json.NewDecoder(r.Body).Decode(&d)
		s.mu.Lock()
		s.created = append(s.created, d)
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(model.Record{ID: "r2", Title: d.Title, Content: d.Content})
	}))
	mux.HandleFunc("PUT /records/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		var d model.Draft
		_ = json.NewDecoder(r.Body).Decode(&d)
		s.mu.Lock()
		s.updated = append(s.updated, d)
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(model.Record{ID: r.PathValue("id"), Title: d.Title, Content: d.Content})
	}))
	mux.HandleFunc("GET /records/{id}/export", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="../audi-a4.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

// run executes sheetctl with a config file in a temp dir.
func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(newApp(&out, &errOut))
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeConfig(t *testing.T, cfg *cliConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheetctl", "config.yaml")
	require.NoError(t, saveConfig(path, cfg))
	return path
}

func TestConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultServer, cfg.Server)
	assert.Empty(t, cfg.Session)
}

func TestConfig_SavedPrivately(t *testing.T) {
	path := writeConfig(t, &cliConfig{Server: "https://sheets.example", Session: "sess_x"})

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://sheets.example", cfg.Server)
	assert.Equal(t, "sess_x", cfg.Session)
}

func TestLoginLogout(t *testing.T) {
	_, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL})

	out, err := run(t, path, "login", "--token", "provider-jwt")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sess_ok", cfg.Session)

	_, err = run(t, path, "logout")
	require.NoError(t, err)

	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Session)
}

func TestCommandsRequireLogin(t *testing.T) {
	_, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL})

	_, err := run(t, path, "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCreate_WithImages(t *testing.T) {
	stub, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL, Session: "sess_ok"})

	png, err := base64.StdEncoding.DecodeString(testutil.TestImage())
	require.NoError(t, err)
	img := filepath.Join(t.TempDir(), "front.png")
	require.NoError(t, os.WriteFile(img, png, 0o600))

	out, err := run(t, path, "create", "--title", "  BMW 320i ", "--price", "31000", "--fuel", "Diesel", "--image", img)
	require.NoError(t, err)
	assert.Contains(t, out, "Created r2")

	require.Len(t, stub.created, 1)
	d := stub.created[0]
	assert.Equal(t, "  BMW 320i ", d.Title)
	assert.Equal(t, "31000", d.Content.Price)
	assert.Equal(t, "Diesel", d.Content.FuelType)
	assert.Equal(t, []string{testutil.TestImage()}, d.Content.Images)
	assert.NotNil(t, d.Content.CreatedAt)
}

func TestCreate_RequiresTitle(t *testing.T) {
	stub, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL, Session: "sess_ok"})

	_, err := run(t, path, "create", "--price", "31000")
	require.Error(t, err)
	assert.Equal(t, "Titel is verplicht", err.Error())
	assert.Empty(t, stub.created)
}

func TestCreate_BadImageAddsNothing(t *testing.T) {
	stub, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL, Session: "sess_ok"})

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("hello"), 0o600))

	_, err := run(t, path, "create", "--title", "x", "--image", notImage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Kon afbeeldingen niet uploaden")
	assert.Empty(t, stub.created)
}

func TestEdit_RemoveImage(t *testing.T) {
	stub, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL, Session: "sess_ok"})

	out, err := run(t, path, "edit", "r1", "--remove-image", "0", "--color", "Zwart")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated r1")

	require.Len(t, stub.updated, 1)
	d := stub.updated[0]
	assert.Equal(t, "Audi A4", d.Title)
	assert.Equal(t, "Zwart", d.Content.Color)
	assert.Equal(t, []string{"aW1nMg=="}, d.Content.Images)
}

func TestEdit_NothingToChange(t *testing.T) {
	stub, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL, Session: "sess_ok"})

	out, err := run(t, path, "edit", "r1", "--title", "Audi A4")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to change")
	assert.Empty(t, stub.updated)
}

func TestExport_WritesServerFilename(t *testing.T) {
	_, srv := newAPIStub(t)
	path := writeConfig(t, &cliConfig{Server: srv.URL, Session: "sess_ok"})
	dir := t.TempDir()

	_, err := run(t, path, "export", "r1", "-o", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "audi-a4.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}
