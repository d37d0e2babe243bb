// Package directory provides the directory bounded context module: the
// mutation producer, the read-only query service and their HTTP surface.
package directory

import (
	"directory_backend/internal/directory/handler"
	"directory_backend/internal/directory/repository"
	"directory_backend/internal/directory/service"
	apphttp "directory_backend/internal/http"
	"directory_backend/platform/logger"
	"directory_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module is the directory bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	producer *service.Producer
	query    *service.Query
}

// NewModule creates and initializes the directory module with all its
// dependencies. The publisher is injected so the HTTP process and tests can
// supply different queue implementations.
func NewModule(client *redis.Client, pub service.Publisher, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(client)
	producer := service.NewProducer(repo, pub, log)
	query := service.NewQuery(repo, log)
	h := handler.New(producer, query, val)

	return &Module{
		handler:  h,
		producer: producer,
		query:    query,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "directory"
}

// RegisterRoutes mounts the directory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orgs := ctx.Root.Group("/organizations")
	orgs.POST("", m.handler.CreateOrganization)
	orgs.PUT("", m.handler.UpdateOrganization)
	orgs.GET("", m.handler.ListOrganizations)
	orgs.GET("/:orgId", m.handler.GetOrganization)

	users := orgs.Group("/:orgId/users")
	users.POST("", m.handler.CreateUser)
	users.PUT("", m.handler.UpdateUser)
	users.GET("", m.handler.ListUsers)
	users.GET("/:userId", m.handler.GetUser)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
