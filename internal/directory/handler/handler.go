package handler

import (
	"github.com/gin-gonic/gin"

	"directory_backend/internal/directory/service"
	"directory_backend/internal/directory/transport"
	"directory_backend/platform/apperr"
	"directory_backend/platform/httpkit"
	"directory_backend/platform/validator"
)

// Handler handles HTTP requests for the directory.
type Handler struct {
	producer *service.Producer
	query    *service.Query
	val      *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a directory handler.
func New(producer *service.Producer, query *service.Query, val *validator.Validator) *Handler {
	return &Handler{producer: producer, query: query, val: val}
}

// CreateOrganization accepts an organization create for asynchronous apply.
// POST /organizations
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req transport.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	result, err := h.producer.SubmitCreateOrganization(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, result)
}

// UpdateOrganization accepts an organization update for asynchronous apply.
// PUT /organizations
func (h *Handler) UpdateOrganization(c *gin.Context) {
	var req transport.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	result, err := h.producer.SubmitUpdateOrganization(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, result)
}

// ListOrganizations retrieves the full organization collection.
// GET /organizations
func (h *Handler) ListOrganizations(c *gin.Context) {
	orgs, err := h.query.GetAllOrganizations(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.OrganizationListEnvelope{
		Message:       "organizations retrieved",
		Organizations: orgs,
	})
}

// GetOrganization retrieves one organization.
// GET /organizations/:orgId
func (h *Handler) GetOrganization(c *gin.Context) {
	org, err := h.query.GetOrganization(c.Request.Context(), c.Param("orgId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.OrganizationEnvelope{
		Message:      "organization retrieved",
		Organization: org,
	})
}

// CreateUser accepts a user create for asynchronous apply.
// POST /organizations/:orgId/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	result, err := h.producer.SubmitCreateUser(c.Request.Context(), c.Param("orgId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, result)
}

// UpdateUser accepts a user update for asynchronous apply.
// PUT /organizations/:orgId/users
func (h *Handler) UpdateUser(c *gin.Context) {
	var req transport.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	result, err := h.producer.SubmitUpdateUser(c.Request.Context(), c.Param("orgId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, result)
}

// ListUsers retrieves all users belonging to an organization.
// GET /organizations/:orgId/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.query.GetAllUsersByOrganization(c.Request.Context(), c.Param("orgId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.UserListEnvelope{
		Message: "users retrieved",
		Users:   users,
	})
}

// GetUser retrieves one user scoped to an organization.
// GET /organizations/:orgId/users/:userId
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.query.GetUser(c.Request.Context(), c.Param("orgId"), c.Param("userId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.UserEnvelope{
		Message: "user retrieved",
		User:    user,
	})
}
