package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	gossh "golang.org/x/crypto/ssh"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/player"
)

// ProfileStore reads and creates player profiles and binds them to keys.
type ProfileStore interface {
	player.Reader
	player.Writer
	player.KeyBinder
}

var errKeyMismatch = errors.New("public key does not match the profile")

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.lanerush/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	Game     config.LaneRushConfig
	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Game:        config.DefaultLaneRushConfig(),
		TickRate:    60,
	}
}

// SSHServer serves Lane Rush over SSH. Every connection plays its own
// session; all of them share one leaderboard. The SSH user name is the
// player ID. A profile is created on first connect and bound to the public
// key that created it; logins without that key play anonymously.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	profiles ProfileStore
	board    *leaderboard.Service
	runs     RunRecorder
	logger   *log.Logger
	sessions sync.WaitGroup
}

// NewSSHServer creates a new SSH server with the given configuration.
// profiles, board and runs may be nil, which disables the matching feature.
func NewSSHServer(cfg SSHServerConfig, profiles ProfileStore, board *leaderboard.Service, runs RunRecorder, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "lanerush-ssh",
		})
	}

	srv := &SSHServer{
		config:   cfg,
		profiles: profiles,
		board:    board,
		runs:     runs,
		logger:   logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".lanerush", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		// Any key is accepted here; resolvePlayer decides what it may claim
		wish.WithPublicKeyAuth(func(ssh.Context, ssh.PublicKey) bool { return true }),
		wish.WithKeyboardInteractiveAuth(func(ssh.Context, gossh.KeyboardInteractiveChallenge) bool { return true }),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a game model for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sshSession.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	user := sshSession.User()
	logger := s.logger.With("user", user)

	profile, err := s.resolvePlayer(sshSession.Context(), user, sshSession.PublicKey())
	if err != nil {
		logger.Warn("playing anonymously", "error", err)
	}

	model := NewModel(Options{
		Config:   s.config.Game,
		Player:   profile,
		Board:    s.board,
		Runs:     s.runs,
		Logger:   logger,
		TickRate: s.config.TickRate,
	})

	// The program ends without a quit key when the client disconnects
	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		<-sshSession.Context().Done()
		model.Close()
		model.Wait()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// resolvePlayer maps an SSH login to a profile. A login without a public
// key plays anonymously. The first key to log in as a user is bound to that
// profile, and later logins must present the same key.
func (s *SSHServer) resolvePlayer(ctx context.Context, user string, key ssh.PublicKey) (player.Profile, error) {
	if s.profiles == nil || user == "" || key == nil {
		return player.Profile{}, nil
	}

	p, err := player.Ensure(ctx, s.profiles, s.profiles, user, user)
	if err != nil {
		return player.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	ok, err := s.profiles.BindKey(ctx, user, gossh.FingerprintSHA256(key))
	if err != nil {
		return player.Profile{}, fmt.Errorf("bind key: %w", err)
	}
	if !ok {
		return player.Profile{}, errKeyMismatch
	}
	return p, nil
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server and waits until every session has
// finished saving its scores and runs.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		// Drop the connections still open so their sessions can wind down
		s.server.Close()
	}
	s.sessions.Wait()
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
