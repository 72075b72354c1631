package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"zaplinks/app/dto"
	businessflow "zaplinks/business_flow"
	"zaplinks/utils"
)

// RedirectHandlerInterface defines the contract for the public resolver
type RedirectHandlerInterface interface {
	Resolve(c fiber.Ctx) error
	ResolvePath(c fiber.Ctx) error
}

// RedirectHandler serves the public smart link resolution endpoint.
// Responses use the flat wire shape the landing page script expects, not
// the APIResponse envelope of the management API.
type RedirectHandler struct {
	flow businessflow.RedirectFlow
}

// NewRedirectHandler creates a new redirect handler
func NewRedirectHandler(flow businessflow.RedirectFlow) RedirectHandlerInterface {
	return &RedirectHandler{flow: flow}
}

func (h *RedirectHandler) errorResponse(c fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(dto.ResolveErrorResponse{Error: message})
}

// Resolve handles GET /resolve?slug=<slug>
func (h *RedirectHandler) Resolve(c fiber.Ctx) error {
	return h.resolve(c, c.Query("slug"), "/resolve")
}

// ResolvePath handles GET /r/<slug>, the short form used on printed media
func (h *RedirectHandler) ResolvePath(c fiber.Ctx) error {
	return h.resolve(c, c.Params("slug"), "/r")
}

func (h *RedirectHandler) resolve(c fiber.Ctx, slug, endpoint string) error {
	if slug == "" {
		return h.errorResponse(c, fiber.StatusBadRequest, "slug is required")
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetReferrer(c.Get("Referer"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.flow.Resolve(h.createRequestContext(c, endpoint), slug, metadata)
	if err != nil {
		switch {
		case businessflow.IsSlugRequired(err):
			return h.errorResponse(c, fiber.StatusBadRequest, "slug is required")
		case businessflow.IsSmartLinkNotFound(err):
			return h.errorResponse(c, fiber.StatusNotFound, "smart link not found")
		case businessflow.IsNoEligibleGroups(err), businessflow.IsNoConfiguredGroups(err):
			return h.errorResponse(c, fiber.StatusNotFound, "no active groups available")
		}
		log.Println("Smart link resolution failed", err)
		return h.errorResponse(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RedirectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 15*time.Second)
}

func (h *RedirectHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
