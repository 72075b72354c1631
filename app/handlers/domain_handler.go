package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"zaplinks/app/dto"
	businessflow "zaplinks/business_flow"
	"zaplinks/utils"
)

// DomainHandlerInterface defines the contract for custom domain handlers
type DomainHandlerInterface interface {
	RegisterDomain(c fiber.Ctx) error
	ListDomains(c fiber.Ctx) error
	VerifyDomain(c fiber.Ctx) error
	RemoveDomain(c fiber.Ctx) error
}

// DomainHandler handles custom domain HTTP requests
type DomainHandler struct {
	domainFlow businessflow.DomainFlow
	validator  *validator.Validate
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(domainFlow businessflow.DomainFlow) DomainHandlerInterface {
	return &DomainHandler{
		domainFlow: domainFlow,
		validator:  validator.New(),
	}
}

func (h *DomainHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DomainHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RegisterDomain handles POST /api/v1/domains
func (h *DomainHandler) RegisterDomain(c fiber.Ctx) error {
	var req dto.CreateDomainRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(fieldErr))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.domainFlow.Register(h.createRequestContext(c, "/api/v1/domains"), userID(c), &req)
	if err != nil {
		if businessflow.IsDomainAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Domain already registered", "DOMAIN_TAKEN", nil)
		}
		log.Println("Domain registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Domain registration failed", "DOMAIN_REGISTER_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Domain registered successfully", result)
}

// ListDomains handles GET /api/v1/domains
func (h *DomainHandler) ListDomains(c fiber.Ctx) error {
	result, err := h.domainFlow.List(h.createRequestContext(c, "/api/v1/domains"), userID(c))
	if err != nil {
		log.Println("Domain listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Domain listing failed", "DOMAIN_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Domains retrieved successfully", result)
}

// VerifyDomain handles POST /api/v1/domains/:id/verify
func (h *DomainHandler) VerifyDomain(c fiber.Ctx) error {
	domainID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid domain ID", "INVALID_DOMAIN_ID", nil)
	}

	result, err := h.domainFlow.Verify(h.createRequestContext(c, "/api/v1/domains/:id/verify"), userID(c), uint(domainID))
	if err != nil {
		if businessflow.IsDomainNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Domain not found", "DOMAIN_NOT_FOUND", nil)
		}
		if businessflow.IsDomainNotReachable(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Domain is not reachable", "DOMAIN_NOT_REACHABLE", nil)
		}
		log.Println("Domain verification failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Domain verification failed", "DOMAIN_VERIFY_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Domain verified successfully", result)
}

// RemoveDomain handles DELETE /api/v1/domains/:id
func (h *DomainHandler) RemoveDomain(c fiber.Ctx) error {
	domainID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid domain ID", "INVALID_DOMAIN_ID", nil)
	}

	err = h.domainFlow.Remove(h.createRequestContext(c, "/api/v1/domains/:id"), userID(c), uint(domainID))
	if err != nil {
		if businessflow.IsDomainNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Domain not found", "DOMAIN_NOT_FOUND", nil)
		}
		log.Println("Domain removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Domain removal failed", "DOMAIN_REMOVE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Domain removed successfully", nil)
}

func (h *DomainHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 15*time.Second)
}

func (h *DomainHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
