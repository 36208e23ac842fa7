package confirmation

type Channel string

const (
	ChannelSMS     Channel = "sms"
	ChannelGateway Channel = "gateway"
	ChannelManual  Channel = "manual"
)

func (c Channel) String() string {
	return string(c)
}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelGateway, ChannelManual:
		return true
	default:
		return false
	}
}

type Resolution string

const (
	ResolutionUnprocessed       Resolution = "unprocessed"
	ResolutionVerified          Resolution = "verified"
	ResolutionIgnoredNotPayment Resolution = "ignored_not_payment"
	ResolutionIgnoredNoMatch    Resolution = "ignored_no_match"
)

func (r Resolution) String() string {
	return string(r)
}

func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionUnprocessed, ResolutionVerified, ResolutionIgnoredNotPayment, ResolutionIgnoredNoMatch:
		return true
	default:
		return false
	}
}
