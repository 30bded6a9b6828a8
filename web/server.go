package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/unrolled/render"

	"github.com/cameza/transfer_manager/controller"
)

// Secrets carries the credentials the HTTP surface checks. The cron
// secret lets the scheduler bypass manual-token checks entirely; the
// manual secret is the shared token humans use to trigger a sync.
type Secrets struct {
	ManualSyncSecret string
	CronSecret       string
	AdminUser        string
	AdminPass        string
}

type Server struct {
	server *http.Server
}

func NewServer(port int, ctrl controller.C, secrets Secrets) (*Server, error) {
	render := newRender()
	router := getRouter(ctrl, render, secrets)

	s := &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
	}
	return s, nil
}

func (s *Server) ListenAndServe(shutdown chan bool, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()

		// Wait for the shutdown signal and safely close the server.
		<-shutdown

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			log.Fatalf("fatal error shutting down server: %v", err)
		}
	}()

	log.Printf("web server is listening on %s", s.server.Addr)
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("fatal error with server: %v", err)
	}
}

func newRender() *render.Render {
	return render.New()
}
