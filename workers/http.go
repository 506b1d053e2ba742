package workers

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"gostablebridge/bridge"
	"gostablebridge/config"
	"gostablebridge/workers/handlers"
)

// Router builds the API routing table for a service instance.
func Router(svc *bridge.Service) chi.Router {
	h := handlers.New(svc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Options("/*", CORSHeaders)

	r.Get("/state", h.State)

	r.Get("/chains", h.Chains)
	r.Get("/estimate", h.Estimate)

	r.Get("/liquidity/check", h.CheckLiquidity)
	r.Get("/liquidity/pools", h.ListPools)
	r.Post("/liquidity/optimize", h.OptimizeLiquidity)

	r.Post("/bridge", h.SubmitBridge)
	r.Get("/bridge/{id}", h.GetBridgeTransaction)

	r.Post("/consensus/{id}", h.RequestConsensus)
	r.Get("/consensus/{id}", h.GetConsensus)
	r.Get("/validators", h.Validators)

	r.Post("/subscriptions", h.Subscribe)
	r.Delete("/subscriptions", h.Unsubscribe)
	r.Get("/ws", h.WebSocket)

	r.Get("/stats/subscriptions", h.SubscriptionStats)
	r.Get("/stats/monitoring", h.MonitoringMetrics)
	r.Get("/analytics/{range}", h.Analytics)

	return r
}

// Worker_HTTP serves the API as the main worker thread and blocks until an
// interrupt, then shuts the server down gracefully.
func Worker_HTTP(svc *bridge.Service) {
	log.Printf("Starting HTTP service")

	r := Router(svc)

	port := config.Config.Server.Port
	if port == 0 {
		port = 8080
	}

	var server *http.Server

	if config.Config.Server.UseSSL {
		cert, _ := tls.LoadX509KeyPair("certchain.pem", "privatekey.pem")
		server = &http.Server{
			Addr:    ":443",
			Handler: r,
			TLSConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		}
	} else {
		server = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if config.Config.Server.UseSSL {
			if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
				log.Fatalf("error listening to: %s", err)
			}
		} else {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("error listening to: %s", err)
			}
		}
	}()
	log.Print("HTTP service started")

	<-done
	log.Print("HTTP service stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP service shutdown error: %+v", err)
	}
	log.Print("HTTP service shutdown normal")
}

func CORSHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, X-Requested-With")
}
