// Package http serves the REST API with gin.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/auth"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.Registration) (*models.User, error)
	Activate(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, actorID, id int64, upd models.UserUpdate) (*models.User, error)
}

type ProductService interface {
	Create(ctx context.Context, userID int64, in models.ProductInput) (*models.ProductDetail, error)
	Update(ctx context.Context, userID int64, id uuid.UUID, in models.ProductInput) (*models.ProductDetail, error)
	Delete(ctx context.Context, userID int64, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error)
	Recent(ctx context.Context) ([]models.ProductDetail, error)
	Popular(ctx context.Context) ([]models.ProductDetail, error)
	ByUser(ctx context.Context, userID int64) ([]models.ProductDetail, error)
}

type ReactionService interface {
	Add(ctx context.Context, userID, productID int64, kind string) (*models.Reaction, error)
	Sub(ctx context.Context, userID, productID int64, kind string) error
	RecentOnUserProducts(ctx context.Context, ownerID int64) ([]models.ReactionActivity, error)
}

type TagService interface {
	List(ctx context.Context) ([]models.Tag, error)
}

type AssetService interface {
	Upload(ctx context.Context, userID int64, key, attachment string) (string, error)
	PresignPut(ctx context.Context, userID int64) (string, string, error)
}

type SuggestionService interface {
	Suggest(ctx context.Context, lang string) (*models.Suggestion, error)
}

// Services groups the collaborators of the handlers.
type Services struct {
	Users       UserService
	Products    ProductService
	Reactions   ReactionService
	Tags        TagService
	Assets      AssetService
	Suggestions SuggestionService
}

type Server struct {
	address        string
	services       Services
	guard          *auth.Guard
	logger         logging.Logger
	requestTimeout time.Duration
	engine         *gin.Engine

	// OnListen, when set, is called once the listener is bound.
	OnListen func(addr net.Addr)
}

func NewServer(address string, svc Services, guard *auth.Guard, requestTimeout time.Duration, l logging.Logger) *Server {
	s := &Server{
		address:        address,
		services:       svc,
		guard:          guard,
		logger:         l.With("module", "http_server"),
		requestTimeout: requestTimeout,
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if s.OnListen != nil {
		s.OnListen(listen.Addr())
	}

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
