package businessflow

import (
	"context"

	"zaplinks/app/dto"
	"zaplinks/app/services"
)

// MessagingFlow exposes the WhatsApp gateway to the dashboard: instance
// health, pairing, and one-off outbound messages.
type MessagingFlow interface {
	InstanceStatus(ctx context.Context) (*dto.InstanceStatusDTO, error)
	QRCode(ctx context.Context) (*dto.QRCodeDTO, error)
	SendText(ctx context.Context, req *dto.SendTextRequest) (*dto.SendTextDTO, error)
}

type MessagingFlowImpl struct {
	zapiClient services.ZAPIClient
}

// NewMessagingFlow creates a new messaging flow instance
func NewMessagingFlow(zapiClient services.ZAPIClient) MessagingFlow {
	return &MessagingFlowImpl{zapiClient: zapiClient}
}

func (f *MessagingFlowImpl) InstanceStatus(ctx context.Context) (*dto.InstanceStatusDTO, error) {
	status, err := f.zapiClient.InstanceStatus(ctx)
	if err != nil {
		return nil, NewBusinessError("INSTANCE_STATUS_FAILED", "Failed to query instance status", err)
	}
	return &dto.InstanceStatusDTO{
		Connected:           status.Connected,
		SmartphoneConnected: status.SmartphoneConnected,
		Error:               status.Error,
	}, nil
}

func (f *MessagingFlowImpl) QRCode(ctx context.Context) (*dto.QRCodeDTO, error) {
	value, err := f.zapiClient.QRCode(ctx)
	if err != nil {
		return nil, NewBusinessError("QR_CODE_FAILED", "Failed to fetch pairing QR code", err)
	}
	return &dto.QRCodeDTO{Value: value}, nil
}

func (f *MessagingFlowImpl) SendText(ctx context.Context, req *dto.SendTextRequest) (*dto.SendTextDTO, error) {
	if req.Phone == "" {
		return nil, ErrPhoneRequired
	}
	if req.Message == "" {
		return nil, ErrMessageRequired
	}
	result, err := f.zapiClient.SendText(ctx, req.Phone, req.Message)
	if err != nil {
		return nil, NewBusinessError("SEND_TEXT_FAILED", "Failed to send message", err)
	}
	return &dto.SendTextDTO{ZaapID: result.ZaapID, MessageID: result.MessageID}, nil
}
