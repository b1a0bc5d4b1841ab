package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/UserDirectory/internal/config"
	"github.com/GoArmGo/UserDirectory/internal/database/storagetest"
	"github.com/GoArmGo/UserDirectory/internal/logger"
	"github.com/GoArmGo/UserDirectory/internal/messaging/payloads"
	"github.com/GoArmGo/UserDirectory/internal/usecase"
)

type orderedCloser struct {
	name  string
	order *[]string
	err   error
}

func (c orderedCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

type fakeConsumer struct {
	started chan struct{}
}

func (f *fakeConsumer) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) error {
	close(f.started)
	return handler(ctx, payloads.UserEvent{Type: payloads.UserCreated, UserID: 1})
}

func testConfig() *config.Config {
	return &config.Config{ServerPort: "0", RequestTimeout: 5 * time.Second}
}

func TestRouterServesThroughMiddleware(t *testing.T) {
	uc := usecase.NewUserUseCase(storagetest.NewMemoryUserStorage(), nil, logger.Discard())
	srv := httptest.NewServer(newRouter(testConfig(), logger.Discard(), uc))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/users", "application/json", strings.NewReader(`{"username":"alice","email":"a@x.com"}`))
	if err != nil {
		t.Fatalf("POST /users: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}

	resp, err = http.Get(srv.URL + "/users/1")
	if err != nil {
		t.Fatalf("GET /users/1: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestShutdownClosesInReverseOrder(t *testing.T) {
	var order []string
	closeErr := errors.New("close failed")
	a := NewApp(testConfig(), logger.Discard(), nil, nil,
		orderedCloser{name: "db", order: &order},
		orderedCloser{name: "rabbitmq", order: &order, err: closeErr},
	)

	if err := a.Shutdown(); !errors.Is(err, closeErr) {
		t.Fatalf("expected close error, got %v", err)
	}
	if strings.Join(order, ",") != "rabbitmq,db" {
		t.Fatalf("unexpected close order %v", order)
	}
	if err := a.Shutdown(); err != nil {
		t.Fatalf("second Shutdown must be a no-op, got %v", err)
	}
}

func TestRunUnknownMode(t *testing.T) {
	var order []string
	a := NewApp(testConfig(), logger.Discard(), nil, nil, orderedCloser{name: "db", order: &order})

	if err := a.Run(context.Background(), "batch"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if len(order) != 1 {
		t.Fatalf("resources must be closed on failure, closed %v", order)
	}
}

func TestRunWorkerRequiresConsumer(t *testing.T) {
	if err := runWorker(context.Background(), logger.Discard(), nil); err == nil {
		t.Fatal("expected error without consumer")
	}
}

func TestRunWorkerStopsOnCancel(t *testing.T) {
	consumer := &fakeConsumer{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runWorker(ctx, logger.Discard(), consumer) }()

	<-consumer.started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWorker: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	uc := usecase.NewUserUseCase(storagetest.NewMemoryUserStorage(), nil, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, testConfig(), logger.Discard(), uc) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
