package request

// SMSWebhookRequest is the payload relayed by the SMS-forwarder app on the
// merchant's phone.
type SMSWebhookRequest struct {
	Sender string `json:"sender"`
	Body   string `json:"body" binding:"required"`
}
