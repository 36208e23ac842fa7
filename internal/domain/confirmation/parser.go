package confirmation

import (
	"encoding/json"
	"errors"
	"regexp"

	"upi-checkout/internal/domain/paylock"

	"github.com/shopspring/decimal"
)

var ErrNotAPayment = errors.New("payload does not look like a payment")

// Bank credit SMS formats vary; the parse requires both a credit keyword and
// a currency marker so debit alerts and OTP texts never match. Banks word it
// either way round ("credited with Rs.400.05" / "Rs.400.05 credited"), so
// both orders are tried.
var (
	smsVerbFirstPattern = regexp.MustCompile(
		`(?i)(?:credited|received|collected|credit of)\D{0,20}(?:rs\.?|inr|₹)\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`,
	)
	smsAmountFirstPattern = regexp.MustCompile(
		`(?i)(?:rs\.?|inr|₹)\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)\D{0,20}(?:credited|received|collected)`,
	)
)

var thousandsSeparator = regexp.MustCompile(`,`)

// ParseSMS extracts the credited amount from a bank notification text.
func ParseSMS(body string) (paylock.Amount, error) {
	m := smsVerbFirstPattern.FindStringSubmatch(body)
	if m == nil {
		m = smsAmountFirstPattern.FindStringSubmatch(body)
	}
	if m == nil {
		return paylock.Amount{}, ErrNotAPayment
	}

	raw := thousandsSeparator.ReplaceAllString(m[1], "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return paylock.Amount{}, ErrNotAPayment
	}

	amount, err := paylock.NewAmountFromDecimal(d)
	if err != nil || !amount.IsPositive() {
		return paylock.Amount{}, ErrNotAPayment
	}
	return amount, nil
}

type gatewayEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				Amount   int64  `json:"amount"` // paise
				Currency string `json:"currency"`
				Status   string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

const gatewayCapturedEvent = "payment.captured"

// ParseGateway extracts the captured amount from a payment-gateway webhook
// payload. Only capture events carry a settled amount worth matching.
func ParseGateway(body string) (paylock.Amount, error) {
	var env gatewayEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return paylock.Amount{}, ErrNotAPayment
	}
	if env.Event != gatewayCapturedEvent {
		return paylock.Amount{}, ErrNotAPayment
	}

	amount, err := paylock.NewAmount(env.Payload.Payment.Entity.Amount)
	if err != nil || !amount.IsPositive() {
		return paylock.Amount{}, ErrNotAPayment
	}
	return amount, nil
}

// Parse dispatches to the channel-specific parser.
func Parse(channel Channel, body string) (paylock.Amount, error) {
	switch channel {
	case ChannelSMS:
		return ParseSMS(body)
	case ChannelGateway:
		return ParseGateway(body)
	default:
		return paylock.Amount{}, ErrNotAPayment
	}
}
