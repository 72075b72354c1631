package dto

// SendTextRequest represents an outbound WhatsApp message request
type SendTextRequest struct {
	Phone   string `json:"phone" validate:"required,max=32"`
	Message string `json:"message" validate:"required,max=4096"`
}

// SendTextDTO represents the gateway acknowledgement in API responses
type SendTextDTO struct {
	ZaapID    string `json:"zaap_id"`
	MessageID string `json:"message_id"`
}

// InstanceStatusDTO represents the WhatsApp instance connection state
type InstanceStatusDTO struct {
	Connected           bool   `json:"connected"`
	SmartphoneConnected bool   `json:"smartphone_connected"`
	Error               string `json:"error,omitempty"`
}

// QRCodeDTO carries the pairing QR code image as a data URL
type QRCodeDTO struct {
	Value string `json:"value"`
}
