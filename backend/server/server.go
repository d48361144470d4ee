package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pdfvault/backend/pipeline"
	"pdfvault/backend/server/misc"
	"pdfvault/backend/server/vault"
	"pdfvault/backend/service"
	"pdfvault/shared"
	"pdfvault/shared/constants"
	"pdfvault/shared/endpoints"
)

type HttpMethod int

const (
	GET HttpMethod = 1 << iota
	PUT
	POST
	DELETE
	ALL = GET | PUT | POST | DELETE
)

var MethodMap = map[HttpMethod]string{
	GET:    http.MethodGet,
	PUT:    http.MethodPut,
	POST:   http.MethodPost,
	DELETE: http.MethodDelete,
}

const shutdownTimeout = 10 * time.Second

type Options struct {
	Debug      bool
	TOTPIssuer string
	QR         pipeline.QRRenderer
}

// Server exposes a vault over HTTP.
type Server struct {
	handler http.Handler
}

// New maps URL paths to the vault's operations.
func New(v *service.Vault, opts Options) *Server {
	qr := opts.QR
	if qr == nil {
		qr = PNGRenderer{}
	}

	issuer := opts.TOTPIssuer
	if len(issuer) == 0 {
		issuer = constants.DefaultTOTPIssuer
	}

	maxSize := v.MaxFileSize()
	info := shared.ServerInfo{
		Version:       constants.VERSION,
		MaxUploadSize: maxSize,
		TOTPIssuer:    issuer,
	}

	r := newRouter(opts.Debug)
	r.AddRoutes([]RouteDef{
		// Password encryption
		{POST, endpoints.Encrypt, vault.Handler(pipeline.Encrypt(v), maxSize, endpoints.Encrypt)},
		{POST, endpoints.Decrypt, vault.Handler(pipeline.Decrypt(v), maxSize, endpoints.Decrypt)},

		// Two-factor protected files
		{POST, endpoints.ProtectFile, vault.Handler(pipeline.Protect(v, qr), maxSize, endpoints.ProtectFile)},
		{POST, endpoints.AccessProtected, vault.Handler(pipeline.AccessProtected(v), maxSize, endpoints.AccessProtected)},
		{GET, endpoints.ProtectedFiles, vault.Handler(pipeline.ListProtected(v), maxSize, endpoints.ProtectedFiles)},
		{DELETE, endpoints.ProtectedFile, vault.Handler(pipeline.RemoveProtected(v), maxSize, endpoints.ProtectedFile)},

		// Shared files
		{POST, endpoints.Share, vault.Handler(pipeline.Share(v), maxSize, endpoints.Share)},
		{GET, endpoints.SharedFiles, vault.Handler(pipeline.ListShared(v), maxSize, endpoints.SharedFiles)},
		{GET, endpoints.SharedFile, vault.Handler(pipeline.AccessShared(v), maxSize, endpoints.SharedFile)},
		{PUT, endpoints.SharedFile, vault.Handler(pipeline.UpdateShared(v), maxSize, endpoints.SharedFile)},
		{DELETE, endpoints.SharedFile, vault.Handler(pipeline.DeleteShared(v), maxSize, endpoints.SharedFile)},
		{POST, endpoints.GrantAccess, vault.Handler(pipeline.Grant(v), maxSize, endpoints.SharedFile)},
		{GET, endpoints.ListAccess, vault.Handler(pipeline.ListAccess(v), maxSize, endpoints.SharedFile)},

		// Misc
		{GET, endpoints.Up, misc.UpHandler},
		{GET, endpoints.ServerInfo, misc.InfoHandler(info)},
	})

	return &Server{
		handler: RequestIDMiddleware(SecurityHeadersMiddleware(r)),
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on addr until the process receives SIGINT or SIGTERM, then
// shuts the server down.
func (s *Server) Run(addr string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("Running on http://%s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
