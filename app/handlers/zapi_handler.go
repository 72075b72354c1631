package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"zaplinks/app/dto"
	businessflow "zaplinks/business_flow"
	"zaplinks/utils"
)

// ZAPIHandlerInterface defines the contract for WhatsApp gateway handlers
type ZAPIHandlerInterface interface {
	InstanceStatus(c fiber.Ctx) error
	QRCode(c fiber.Ctx) error
	SendText(c fiber.Ctx) error
}

// ZAPIHandler exposes gateway status, pairing, and outbound messaging
type ZAPIHandler struct {
	messagingFlow businessflow.MessagingFlow
	validator     *validator.Validate
}

// NewZAPIHandler creates a new gateway handler
func NewZAPIHandler(messagingFlow businessflow.MessagingFlow) ZAPIHandlerInterface {
	return &ZAPIHandler{
		messagingFlow: messagingFlow,
		validator:     validator.New(),
	}
}

func (h *ZAPIHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ZAPIHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// InstanceStatus handles GET /api/v1/whatsapp/status
func (h *ZAPIHandler) InstanceStatus(c fiber.Ctx) error {
	result, err := h.messagingFlow.InstanceStatus(h.createRequestContext(c, "/api/v1/whatsapp/status"))
	if err != nil {
		log.Println("Instance status failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Instance status failed", "INSTANCE_STATUS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Instance status retrieved successfully", result)
}

// QRCode handles GET /api/v1/whatsapp/qr-code
func (h *ZAPIHandler) QRCode(c fiber.Ctx) error {
	result, err := h.messagingFlow.QRCode(h.createRequestContext(c, "/api/v1/whatsapp/qr-code"))
	if err != nil {
		log.Println("QR code fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "QR code fetch failed", "QR_CODE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "QR code retrieved successfully", result)
}

// SendText handles POST /api/v1/whatsapp/send-text
func (h *ZAPIHandler) SendText(c fiber.Ctx) error {
	var req dto.SendTextRequest
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

	result, err := h.messagingFlow.SendText(h.createRequestContext(c, "/api/v1/whatsapp/send-text"), &req)
	if err != nil {
		log.Println("Send text failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Send text failed", "SEND_TEXT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Message sent successfully", result)
}

func (h *ZAPIHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 15*time.Second)
}

func (h *ZAPIHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
