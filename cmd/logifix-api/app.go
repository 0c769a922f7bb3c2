package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/byTonho/logifix/internal/api/apiutil"
	"github.com/byTonho/logifix/internal/api/audit_api"
	"github.com/byTonho/logifix/internal/api/auth_api"
	"github.com/byTonho/logifix/internal/api/carriers_api"
	"github.com/byTonho/logifix/internal/api/dashboard_api"
	"github.com/byTonho/logifix/internal/api/occurrences_api"
	"github.com/byTonho/logifix/internal/api/users_api"
	"github.com/byTonho/logifix/internal/broker/messages"
	"github.com/byTonho/logifix/internal/services/audit"
	"github.com/byTonho/logifix/internal/services/auth"
	"github.com/byTonho/logifix/internal/services/board"
	"github.com/byTonho/logifix/internal/services/carriers"
	"github.com/byTonho/logifix/internal/services/occurrences"
	"github.com/byTonho/logifix/internal/services/users"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type logifixAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type logifixServices struct {
	occurrences *occurrences.Service
	board       *board.Board
	carriers    *carriers.Service
	users       *users.Service
	auth        *auth.Service
	audit       *audit.Service
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func buildRouter(svcs logifixServices, swaggerPath string) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, swaggerPath)
	})
	swaggerURL := "/swagger.json"
	if fi, err := os.Stat(swaggerPath); err == nil {
		swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
	}
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))

	authenticated := apiutil.Authenticator(svcs.auth)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", auth_api.New(svcs.auth).Routes(authenticated))
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Mount("/occurrences", occurrences_api.New(svcs.occurrences, svcs.board, svcs.carriers).Routes())
			r.Mount("/carriers", carriers_api.New(svcs.carriers).Routes())
			r.Mount("/users", users_api.New(svcs.users).Routes())
			r.Mount("/dashboard", dashboard_api.New(svcs.occurrences, svcs.carriers).Routes())
			r.Mount("/audit-logs", audit_api.New(svcs.audit).Routes())
		})
	})
	return r
}

func runLogiFixAPI(ctx context.Context, opts logifixAPIOpts, svcs logifixServices, consumer kafkaConsumer) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		_ = consumer.Consume(ctx, func(_key, value []byte) error {
			var m messages.AuditLogged
			if err := json.Unmarshal(value, &m); err != nil {
				return err
			}
			return svcs.audit.Apply(ctx, m)
		})
	}()

	srv := &http.Server{Handler: buildRouter(svcs, opts.swaggerPath)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && ctx.Err() != nil {
		return ctx.Err()
	} else if err != nil {
		return err
	}
	return nil
}
