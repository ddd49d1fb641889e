package validators

import (
	"errors"
	"strings"
)

// Channel is the delivery channel implied by an identifier
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

var ErrInvalidIdentifier = errors.New("identifier must be an email address or a phone number")

// PhoneRule describes what a normalized phone number looks like. Normalizing
// only strips whitespace.
type PhoneRule struct {
	Prefix string
	Length int
}

var DefaultPhoneRule = PhoneRule{
	Prefix: "+250",
	Length: 13,
}

// Identifier is a login handle resolved to exactly one channel. Value is the
// normalized form used for lookups and delivery.
type Identifier struct {
	Channel Channel
	Value   string
}

func (i Identifier) IsEmail() bool { return i.Channel == ChannelEmail }

func (i Identifier) IsPhone() bool { return i.Channel == ChannelPhone }

// ParseIdentifier classifies s as an email address or a phone number.
// Email addresses are lowercased.
func (r PhoneRule) ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)

	if EmailValidator(s) == nil {
		return Identifier{Channel: ChannelEmail, Value: strings.ToLower(s)}, nil
	}

	phone := strings.Join(strings.Fields(s), "")
	if r.matches(phone) {
		return Identifier{Channel: ChannelPhone, Value: phone}, nil
	}

	return Identifier{}, ErrInvalidIdentifier
}

// ParseEmail is ParseIdentifier restricted to email addresses
func (r PhoneRule) ParseEmail(s string) (Identifier, error) {
	id, err := r.ParseIdentifier(s)
	if err != nil || !id.IsEmail() {
		return Identifier{}, ErrInvalidIdentifier
	}

	return id, nil
}

// ParsePhone is ParseIdentifier restricted to phone numbers
func (r PhoneRule) ParsePhone(s string) (Identifier, error) {
	id, err := r.ParseIdentifier(s)
	if err != nil || !id.IsPhone() {
		return Identifier{}, ErrInvalidIdentifier
	}

	return id, nil
}

func (r PhoneRule) matches(phone string) bool {
	if !strings.HasPrefix(phone, r.Prefix) || len(phone) != r.Length {
		return false
	}

	for _, c := range phone[len(r.Prefix):] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// ParseIdentifier uses DefaultPhoneRule
func ParseIdentifier(s string) (Identifier, error) {
	return DefaultPhoneRule.ParseIdentifier(s)
}
