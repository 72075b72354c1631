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

// SmartLinkHandlerInterface defines the contract for smart link handlers
type SmartLinkHandlerInterface interface {
	CreateSmartLink(c fiber.Ctx) error
	ListSmartLinks(c fiber.Ctx) error
	GetSmartLink(c fiber.Ctx) error
	UpdateSmartLink(c fiber.Ctx) error
	DeactivateSmartLink(c fiber.Ctx) error
	GetStats(c fiber.Ctx) error
	ExportClicks(c fiber.Ctx) error
}

// SmartLinkHandler handles smart link management HTTP requests
type SmartLinkHandler struct {
	smartLinkFlow businessflow.SmartLinkFlow
	validator     *validator.Validate
}

// NewSmartLinkHandler creates a new smart link handler
func NewSmartLinkHandler(smartLinkFlow businessflow.SmartLinkFlow) SmartLinkHandlerInterface {
	return &SmartLinkHandler{
		smartLinkFlow: smartLinkFlow,
		validator:     validator.New(),
	}
}

func (h *SmartLinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SmartLinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *SmartLinkHandler) validateRequest(c fiber.Ctx, req any) error {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(fieldErr))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return nil
}

func (h *SmartLinkHandler) mapSmartLinkError(c fiber.Ctx, err error) (bool, error) {
	switch {
	case businessflow.IsSmartLinkNotFound(err):
		return true, h.ErrorResponse(c, fiber.StatusNotFound, "Smart link not found", "SMART_LINK_NOT_FOUND", nil)
	case businessflow.IsCampaignNotFound(err):
		return true, h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	case businessflow.IsCampaignAccessDenied(err):
		return true, h.ErrorResponse(c, fiber.StatusForbidden, "Campaign access denied", "CAMPAIGN_ACCESS_DENIED", nil)
	case businessflow.IsSlugAlreadyExists(err):
		return true, h.ErrorResponse(c, fiber.StatusConflict, "Slug already exists", "SLUG_TAKEN", nil)
	case businessflow.IsSlugInvalid(err), businessflow.IsSlugRequired(err):
		return true, h.ErrorResponse(c, fiber.StatusBadRequest, "Slug is invalid", "INVALID_SLUG", nil)
	}
	return false, nil
}

// CreateSmartLink handles POST /api/v1/smart-links
func (h *SmartLinkHandler) CreateSmartLink(c fiber.Ctx) error {
	var req dto.CreateSmartLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.smartLinkFlow.Create(h.createRequestContext(c, "/api/v1/smart-links"), userID(c), &req)
	if err != nil {
		if handled, resp := h.mapSmartLinkError(c, err); handled {
			return resp
		}
		log.Println("Smart link creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link creation failed", "SMART_LINK_CREATION_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Smart link created successfully", result)
}

// ListSmartLinks handles GET /api/v1/smart-links
func (h *SmartLinkHandler) ListSmartLinks(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.smartLinkFlow.List(h.createRequestContext(c, "/api/v1/smart-links"), userID(c), page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
		}
		log.Println("Smart link listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link listing failed", "SMART_LINK_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Smart links retrieved successfully", result)
}

// GetSmartLink handles GET /api/v1/smart-links/:uuid
func (h *SmartLinkHandler) GetSmartLink(c fiber.Ctx) error {
	result, err := h.smartLinkFlow.Get(h.createRequestContext(c, "/api/v1/smart-links/:uuid"), userID(c), c.Params("uuid"))
	if err != nil {
		if handled, resp := h.mapSmartLinkError(c, err); handled {
			return resp
		}
		log.Println("Smart link retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link retrieval failed", "SMART_LINK_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Smart link retrieved successfully", result)
}

// UpdateSmartLink handles PUT /api/v1/smart-links/:uuid
func (h *SmartLinkHandler) UpdateSmartLink(c fiber.Ctx) error {
	var req dto.UpdateSmartLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.smartLinkFlow.Update(h.createRequestContext(c, "/api/v1/smart-links/:uuid"), userID(c), c.Params("uuid"), &req)
	if err != nil {
		if handled, resp := h.mapSmartLinkError(c, err); handled {
			return resp
		}
		log.Println("Smart link update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link update failed", "SMART_LINK_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Smart link updated successfully", result)
}

// DeactivateSmartLink handles DELETE /api/v1/smart-links/:uuid
func (h *SmartLinkHandler) DeactivateSmartLink(c fiber.Ctx) error {
	err := h.smartLinkFlow.Deactivate(h.createRequestContext(c, "/api/v1/smart-links/:uuid"), userID(c), c.Params("uuid"))
	if err != nil {
		if handled, resp := h.mapSmartLinkError(c, err); handled {
			return resp
		}
		log.Println("Smart link deactivation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link deactivation failed", "SMART_LINK_DEACTIVATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Smart link deactivated successfully", nil)
}

// GetStats handles GET /api/v1/smart-links/:uuid/stats
func (h *SmartLinkHandler) GetStats(c fiber.Ctx) error {
	result, err := h.smartLinkFlow.Stats(h.createRequestContext(c, "/api/v1/smart-links/:uuid/stats"), userID(c), c.Params("uuid"))
	if err != nil {
		if handled, resp := h.mapSmartLinkError(c, err); handled {
			return resp
		}
		log.Println("Smart link stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link stats failed", "SMART_LINK_STATS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Smart link stats retrieved successfully", result)
}

// ExportClicks handles GET /api/v1/smart-links/:uuid/export
func (h *SmartLinkHandler) ExportClicks(c fiber.Ctx) error {
	// Export walks the full click history; give it a longer deadline.
	ctx := h.createRequestContextWithTimeout(c, "/api/v1/smart-links/:uuid/export", 60*time.Second)

	data, filename, err := h.smartLinkFlow.ExportClicks(ctx, userID(c), c.Params("uuid"))
	if err != nil {
		if handled, resp := h.mapSmartLinkError(c, err); handled {
			return resp
		}
		log.Println("Smart link export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Smart link export failed", "SMART_LINK_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *SmartLinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *SmartLinkHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
