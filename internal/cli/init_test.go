package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	applog "ledger/internal/log"
)

type fakeServer struct {
	listenErr error
	stopped   chan struct{}
	once      sync.Once
	shutdowns int
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stopped: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns++
	f.once.Do(func() { close(f.stopped) })
	return nil
}

func TestRunShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, applog.Discard(), srv, time.Second) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if srv.shutdowns != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns)
	}
}

func TestRunReturnsListenError(t *testing.T) {
	wantErr := errors.New("address already in use")
	srv := newFakeServer(wantErr)

	err := Run(context.Background(), applog.Discard(), srv, time.Second)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() = %v, want %v", err, wantErr)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}

	t.Setenv("PORT", "8080")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
}
