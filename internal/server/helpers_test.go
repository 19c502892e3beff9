package server

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"banrelay/internal/config"
	"banrelay/internal/discord"
	"banrelay/internal/models"
	"banrelay/internal/repository"
	"banrelay/internal/roblox"
	"banrelay/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBanTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Ban{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// capturedRequest is one request recorded by an apiDouble.
type capturedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// apiDouble is an httptest server that records every request and answers
// with a canned status and body.
type apiDouble struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	respBody string
	block    chan struct{} // when non-nil, requests wait here first
}

func newAPIDouble(t *testing.T, status int, respBody string) *apiDouble {
	t.Helper()
	d := &apiDouble{status: status, respBody: respBody}
	d.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.block != nil {
			<-d.block
		}
		body, _ := io.ReadAll(r.Body)
		d.mu.Lock()
		d.requests = append(d.requests, capturedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		d.mu.Unlock()
		w.WriteHeader(d.status)
		_, _ = w.Write([]byte(d.respBody))
	}))
	t.Cleanup(d.Close)
	return d
}

func (d *apiDouble) captured() []capturedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]capturedRequest, len(d.requests))
	copy(out, d.requests)
	return out
}

// newTestServer wires a Server around sqlite and the given API doubles,
// mirroring production wiring minus metrics registration.
func newTestServer(t *testing.T, db *gorm.DB, cfg *config.Config, discordDouble, robloxDouble *apiDouble) *Server {
	t.Helper()

	banRepo := repository.NewBanRepository(db)
	discordClient := discord.NewClient("test-token", discord.WithBaseURL(discordDouble.URL))
	robloxClient := roblox.NewClient("test-key", "123456", roblox.WithBaseURL(robloxDouble.URL))

	s := &Server{
		config:        cfg,
		db:            db,
		banRepo:       banRepo,
		discordClient: discordClient,
		robloxClient:  robloxClient,
	}
	s.appealService = service.NewAppealService(banRepo, robloxClient, nil, discordClient)
	return s
}

// interactionSigner signs interaction payloads the way Discord does.
type interactionSigner struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newInteractionSigner(t *testing.T) *interactionSigner {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &interactionSigner{pub: pub, priv: priv}
}

func (s *interactionSigner) publicKeyHex() string {
	return hex.EncodeToString(s.pub)
}

func (s *interactionSigner) sign(timestamp string, body []byte) string {
	sig := ed25519.Sign(s.priv, append([]byte(timestamp), body...))
	return hex.EncodeToString(sig)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
