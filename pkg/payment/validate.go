// Package payment validates customer payment input before it reaches a gateway.
package payment

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Mobile-money providers.
const (
	ProviderMPesa       = "mpesa"
	ProviderTigoPesa    = "tigopesa"
	ProviderAirtelMoney = "airtelmoney"
	ProviderHaloPesa    = "halopesa"
)

var (
	ErrUnknownProvider = errors.New("payment: unknown mobile money provider")
	ErrInvalidPhone    = errors.New("payment: invalid phone number")
	ErrProviderNetwork = errors.New("payment: phone number does not belong to provider")
	ErrInvalidCard     = errors.New("payment: card number must be 16 digits")
	ErrCardChecksum    = errors.New("payment: card number failed checksum")
	ErrInvalidExpiry   = errors.New("payment: expiry must be MM/YY")
	ErrCardExpired     = errors.New("payment: card has expired")
	ErrInvalidCVV      = errors.New("payment: CVV must be 3 or 4 digits")
	ErrHolderRequired  = errors.New("payment: cardholder name is required")
	ErrInvalidAmount   = errors.New("payment: amount must be greater than 0")
)

// providerNetworks maps a provider to the two-digit network codes it owns.
var providerNetworks = map[string][]string{
	ProviderMPesa:       {"74", "75", "76"},
	ProviderTigoPesa:    {"65", "67", "71"},
	ProviderAirtelMoney: {"68", "69", "78"},
	ProviderHaloPesa:    {"61", "62"},
}

// Providers returns the supported mobile-money providers.
func Providers() []string {
	return []string{ProviderMPesa, ProviderTigoPesa, ProviderAirtelMoney, ProviderHaloPesa}
}

var (
	localPhone = regexp.MustCompile(`^0(\d{2})\d{7}$`)
	intlPhone  = regexp.MustCompile(`^\+?255(\d{2})\d{7}$`)
	expiryRe   = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvRe      = regexp.MustCompile(`^\d{3,4}$`)
	digitsRe   = regexp.MustCompile(`^\d{16}$`)
)

// NormalizePhone validates phone for provider and returns it as 255XXXXXXXXX.
// Both the local form 0XXXXXXXXX and the international form (+)255XXXXXXXXX are accepted.
func NormalizePhone(provider, phone string) (string, error) {
	networks, ok := providerNetworks[strings.ToLower(provider)]
	if !ok {
		return "", ErrUnknownProvider
	}
	phone = stripSeparators(phone)

	var network, national string
	if m := localPhone.FindStringSubmatch(phone); m != nil {
		network, national = m[1], phone[1:]
	} else if m := intlPhone.FindStringSubmatch(phone); m != nil {
		network, national = m[1], strings.TrimPrefix(strings.TrimPrefix(phone, "+"), "255")
	} else {
		return "", ErrInvalidPhone
	}

	for _, n := range networks {
		if n == network {
			return "255" + national, nil
		}
	}
	return "", ErrProviderNetwork
}

// MaskPhone keeps the country code and the last three digits.
func MaskPhone(normalized string) string {
	if len(normalized) < 6 {
		return normalized
	}
	return normalized[:3] + strings.Repeat("*", len(normalized)-6) + normalized[len(normalized)-3:]
}

// Card is raw card input as typed by the customer.
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Holder string `json:"holder"`
}

// ValidateCard checks number shape and checksum, expiry and CVV. now decides
// whether the card has expired; a card is valid through the last day of its
// expiry month.
func ValidateCard(c Card, now time.Time) error {
	number := stripSeparators(c.Number)
	if !digitsRe.MatchString(number) {
		return ErrInvalidCard
	}
	if !luhn(number) {
		return ErrCardChecksum
	}

	m := expiryRe.FindStringSubmatch(strings.TrimSpace(c.Expiry))
	if m == nil {
		return ErrInvalidExpiry
	}
	month := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	year := 2000 + int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.UTC().Before(firstOfNext) {
		return ErrCardExpired
	}

	if !cvvRe.MatchString(strings.TrimSpace(c.CVV)) {
		return ErrInvalidCVV
	}
	if strings.TrimSpace(c.Holder) == "" {
		return ErrHolderRequired
	}
	return nil
}

// CardNumber returns the card number with separators removed.
func CardNumber(c Card) string {
	return stripSeparators(c.Number)
}

// MaskCard returns the last four digits of the card prefixed with asterisks.
func MaskCard(number string) string {
	number = stripSeparators(number)
	if len(number) < 4 {
		return number
	}
	return "**** " + number[len(number)-4:]
}

// ValidateAmount rejects non-positive amounts.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func stripSeparators(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}
