package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enigmahunt/enigmahunt/internal/api"
	"github.com/enigmahunt/enigmahunt/internal/factory"
	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "enigmactl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/enigmactl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		Logger: logger,
		AuthConfig: auth.Config{
			SessionDuration: time.Hour,
			InitialBalance:  20,
		},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:                logger,
		AuthService:           app.AuthService,
		ProgressionController: app.ProgressionController,
		CatalogService:        app.CatalogService,
		RankingService:        app.RankingService,
		CORSOrigins:           []string{"*"},
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:    app,
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// promoteAdmin flips the admin flag on a registered player and returns
// a fresh admin session token
func promoteAdmin(t *testing.T, ts *testServer, username, password string) string {
	t.Helper()

	ctx := context.Background()
	rp, err := ts.app.Storage.GetRegisteredPlayerByUsername(ctx, username)
	require.NoError(t, err)
	rp.IsAdmin = true
	require.NoError(t, ts.app.Storage.SaveRegisteredPlayer(ctx, rp))

	session, err := ts.app.AuthService.Login(ctx, username, password)
	require.NoError(t, err)
	return session.Token
}

// Response types for JSON parsing
type authResponse struct {
	Player struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Balance     int64  `json:"balance"`
	} `json:"player"`
	IsAdmin      bool   `json:"is_admin"`
	SessionToken string `json:"session_token"`
}

type eventResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
}

type submitResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	RemainingAttempts int    `json:"remaining_attempts"`
	NextStep          *struct {
		Type   string `json:"type"`
		Enigma *struct {
			ID string `json:"id"`
		} `json:"enigma"`
	} `json:"next_step"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("player", "register", "--name", "Alice", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "Alice", authResp.Player.DisplayName)
	assert.Equal(t, int64(20), authResp.Player.Balance)
	assert.NotEmpty(t, authResp.SessionToken)

	// Get me (token should be saved in token file)
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)

	var player struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "Alice", player.DisplayName)
	assert.Equal(t, authResp.Player.ID, player.ID)
}

func TestCLI_AdminAuthoring(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "register", "--name", "Admin", "--user", "admin", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	// Admin routes are forbidden before promotion
	output, err = cli.run("admin", "dashboard")
	require.Error(t, err, "output: %s", output)

	adminToken := promoteAdmin(t, ts, "admin", "secret123")

	// Create an event
	output, err = cli.runWithToken(adminToken, "admin", "create-event", "--id", "hunt1", "--name", "City Hunt")
	require.NoError(t, err, "output: %s", output)

	var event eventResponse
	require.NoError(t, json.Unmarshal([]byte(output), &event))
	assert.Equal(t, "hunt1", event.ID)
	assert.Equal(t, "dev", event.Status)

	// Add a phase and an enigma
	output, err = cli.runWithToken(adminToken, "admin", "add-phase", "hunt1", "--order", "1")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.runWithToken(adminToken, "admin", "add-enigma", "hunt1", "--phase", "1", "--id", "e1", "--code", "sphinx")
	require.NoError(t, err, "output: %s", output)

	// Open the event
	output, err = cli.runWithToken(adminToken, "admin", "set-status", "hunt1", "--status", "open")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &event))
	assert.Equal(t, "open", event.Status)
}

func TestCLI_GameplayFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Seed a two-enigma event directly through the catalog service
	ctx := context.Background()
	_, err := ts.app.CatalogService.CreateEvent(ctx, "hunt1", "City Hunt")
	require.NoError(t, err)
	_, err = ts.app.CatalogService.AddPhase(ctx, "hunt1", 1)
	require.NoError(t, err)
	require.NoError(t, ts.app.CatalogService.AddEnigma(ctx, "hunt1", 1, &model.Enigma{ID: "e1", Code: "alpha"}))
	require.NoError(t, ts.app.CatalogService.AddEnigma(ctx, "hunt1", 1, &model.Enigma{ID: "e2", Code: "beta"}))
	require.NoError(t, ts.app.CatalogService.SetEventStatus(ctx, "hunt1", model.EventStatusOpen))

	// Register a player
	output, err := cli.run("player", "register", "--name", "Alice", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	// Wrong code burns an attempt
	output, err = cli.run("enigma", "submit", "hunt1", "--phase", "1", "--enigma", "e1", "--code", "nope")
	require.NoError(t, err, "output: %s", output)

	var submit submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &submit))
	assert.False(t, submit.Success)
	assert.Equal(t, 2, submit.RemainingAttempts)

	// Correct code advances to the next enigma
	output, err = cli.run("enigma", "submit", "hunt1", "--phase", "1", "--enigma", "e1", "--code", "alpha")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &submit))
	assert.True(t, submit.Success)
	require.NotNil(t, submit.NextStep)
	assert.Equal(t, "next_enigma", submit.NextStep.Type)
	require.NotNil(t, submit.NextStep.Enigma)
	assert.Equal(t, "e2", submit.NextStep.Enigma.ID)

	// Finishing the last enigma of the last phase wins the event
	output, err = cli.run("enigma", "submit", "hunt1", "--phase", "1", "--enigma", "e2", "--code", "beta")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &submit))
	assert.True(t, submit.Success)
	require.NotNil(t, submit.NextStep)
	assert.Equal(t, "event_complete", submit.NextStep.Type)

	// The event is closed with the winner recorded
	output, err = cli.run("events", "get", "hunt1")
	require.NoError(t, err, "output: %s", output)

	var detail struct {
		Event eventResponse `json:"event"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &detail))
	assert.Equal(t, "closed", detail.Event.Status)
	assert.Equal(t, "Alice", detail.Event.WinnerName)
}
