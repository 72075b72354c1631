// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
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

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	CreateCampaign(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	ArchiveCampaign(c fiber.Ctx) error

	AddGroup(c fiber.Ctx) error
	ListGroups(c fiber.Ctx) error
	UpdateGroup(c fiber.Ctx) error
	RemoveGroup(c fiber.Ctx) error
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) CampaignHandlerInterface {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

func (h *CampaignHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CampaignHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *CampaignHandler) validateRequest(c fiber.Ctx, req any) error {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(fieldErr))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return nil
}

// mapCampaignError translates shared campaign errors into HTTP responses.
// Returns false when the error is not one of the known business errors.
func (h *CampaignHandler) mapCampaignError(c fiber.Ctx, err error) (bool, error) {
	switch {
	case businessflow.IsCampaignNotFound(err):
		return true, h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	case businessflow.IsCampaignAccessDenied(err):
		return true, h.ErrorResponse(c, fiber.StatusForbidden, "Campaign access denied", "CAMPAIGN_ACCESS_DENIED", nil)
	case businessflow.IsCampaignGroupNotFound(err):
		return true, h.ErrorResponse(c, fiber.StatusNotFound, "Campaign group not found", "GROUP_NOT_FOUND", nil)
	case businessflow.IsInviteLinkInvalid(err):
		return true, h.ErrorResponse(c, fiber.StatusBadRequest, "Invite link must be a WhatsApp group invite", "INVALID_INVITE_LINK", nil)
	}
	return false, nil
}

// CreateCampaign handles POST /api/v1/campaigns
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.campaignFlow.Create(h.createRequestContext(c, "/api/v1/campaigns"), userID(c), &req)
	if err != nil {
		log.Println("Campaign creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign creation failed", "CAMPAIGN_CREATION_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// ListCampaigns handles GET /api/v1/campaigns
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.campaignFlow.List(h.createRequestContext(c, "/api/v1/campaigns"), userID(c), page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
		}
		log.Println("Campaign listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign listing failed", "CAMPAIGN_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// GetCampaign handles GET /api/v1/campaigns/:uuid
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")

	result, err := h.campaignFlow.Get(h.createRequestContext(c, "/api/v1/campaigns/:uuid"), userID(c), campaignUUID)
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Campaign retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign retrieval failed", "CAMPAIGN_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// UpdateCampaign handles PUT /api/v1/campaigns/:uuid
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")

	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.campaignFlow.Update(h.createRequestContext(c, "/api/v1/campaigns/:uuid"), userID(c), campaignUUID, &req)
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Campaign update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign update failed", "CAMPAIGN_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign updated successfully", result)
}

// ArchiveCampaign handles DELETE /api/v1/campaigns/:uuid
func (h *CampaignHandler) ArchiveCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")

	err := h.campaignFlow.Archive(h.createRequestContext(c, "/api/v1/campaigns/:uuid"), userID(c), campaignUUID)
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Campaign archive failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign archive failed", "CAMPAIGN_ARCHIVE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign archived successfully", nil)
}

// AddGroup handles POST /api/v1/campaigns/:uuid/groups
func (h *CampaignHandler) AddGroup(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")

	var req dto.CreateCampaignGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.campaignFlow.AddGroup(h.createRequestContext(c, "/api/v1/campaigns/:uuid/groups"), userID(c), campaignUUID, &req)
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Group creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Group creation failed", "GROUP_CREATION_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Group created successfully", result)
}

// ListGroups handles GET /api/v1/campaigns/:uuid/groups
func (h *CampaignHandler) ListGroups(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")

	result, err := h.campaignFlow.ListGroups(h.createRequestContext(c, "/api/v1/campaigns/:uuid/groups"), userID(c), campaignUUID)
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Group listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Group listing failed", "GROUP_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Groups retrieved successfully", result)
}

// UpdateGroup handles PUT /api/v1/campaigns/:uuid/groups/:id
func (h *CampaignHandler) UpdateGroup(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid group ID", "INVALID_GROUP_ID", nil)
	}

	var req dto.UpdateCampaignGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.campaignFlow.UpdateGroup(h.createRequestContext(c, "/api/v1/campaigns/:uuid/groups/:id"), userID(c), campaignUUID, uint(groupID), &req)
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Group update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Group update failed", "GROUP_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Group updated successfully", result)
}

// RemoveGroup handles DELETE /api/v1/campaigns/:uuid/groups/:id
func (h *CampaignHandler) RemoveGroup(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid group ID", "INVALID_GROUP_ID", nil)
	}

	err = h.campaignFlow.RemoveGroup(h.createRequestContext(c, "/api/v1/campaigns/:uuid/groups/:id"), userID(c), campaignUUID, uint(groupID))
	if err != nil {
		if handled, resp := h.mapCampaignError(c, err); handled {
			return resp
		}
		log.Println("Group removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Group removal failed", "GROUP_REMOVE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Group removed successfully", nil)
}

func (h *CampaignHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *CampaignHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
