package brcode

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed fields, already tag/length framed.
const (
	payloadFormatIndicator = "000201"
	merchantCategoryCode   = "52040000"
	transactionCurrency    = "5303986"
	countryCode            = "5802BR"
	checksumHeader         = "6304"
)

const (
	tagPayloadFormat   = "00"
	tagMerchantAccount = "26"
	tagCategoryCode    = "52"
	tagCurrency        = "53"
	tagAmount          = "54"
	tagCountry         = "58"
	tagMerchantName    = "59"
	tagMerchantCity    = "60"
	tagAdditionalData  = "62"
	tagChecksum        = "63"

	tagGUI       = "00"
	tagKey       = "01"
	tagReference = "05"
)

const (
	// GUI identifies the Pix arrangement inside the merchant account template.
	GUI = "BR.GOV.BCB.PIX"
	// NoReference is the reference label of a static payload without txid.
	NoReference = "***"

	maxNameLength = 25
)

var (
	ErrInvalidAmount     = errors.New("amount must be a non-empty decimal string")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrMissingChecksum   = errors.New("payload does not end with a checksum field")
	ErrUnsupportedFormat = errors.New("unsupported payload format")
	ErrNotPix            = errors.New("merchant account is not a pix account")
)

// MerchantProfile is the static payee data embedded in every payload.
type MerchantProfile struct {
	Key           string
	RecipientName string
	City          string
}

// Build assembles the static payload for profile and amount. amount must
// already be normalized by the caller (e.g. "19.90").
func Build(profile MerchantProfile, amount string) (string, error) {
	if !validAmount(amount) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	account, err := encodeFields(
		Field{Tag: tagGUI, Value: GUI},
		Field{Tag: tagKey, Value: profile.Key},
	)
	if err != nil {
		return "", fmt.Errorf("merchant account: %w", err)
	}
	additional, err := EncodeField(tagReference, NoReference)
	if err != nil {
		return "", fmt.Errorf("additional data: %w", err)
	}

	var b strings.Builder
	b.WriteString(payloadFormatIndicator)
	if err := writeField(&b, Field{Tag: tagMerchantAccount, Value: account}); err != nil {
		return "", err
	}
	b.WriteString(merchantCategoryCode)
	b.WriteString(transactionCurrency)
	if err := writeField(&b, Field{Tag: tagAmount, Value: amount}); err != nil {
		return "", err
	}
	b.WriteString(countryCode)
	fields := []Field{
		{Tag: tagMerchantName, Value: truncate(Normalize(profile.RecipientName), maxNameLength)},
		{Tag: tagMerchantCity, Value: Normalize(profile.City)},
		{Tag: tagAdditionalData, Value: additional},
	}
	for _, f := range fields {
		if err := writeField(&b, f); err != nil {
			return "", err
		}
	}
	b.WriteString(checksumHeader)

	payload := b.String()
	return payload + CRC16(payload), nil
}

func writeField(b *strings.Builder, f Field) error {
	enc, err := EncodeField(f.Tag, f.Value)
	if err != nil {
		return err
	}
	b.WriteString(enc)
	return nil
}

// validAmount accepts digits with at most one decimal point.
func validAmount(amount string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(amount); i++ {
		switch {
		case isDigit(amount[i]):
			digits++
		case amount[i] == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Payload is the decoded content of a static BR Code.
type Payload struct {
	Key                  string `json:"key"`
	RecipientName        string `json:"recipient_name"`
	City                 string `json:"city"`
	Amount               string `json:"amount,omitempty"`
	Currency             string `json:"currency"`
	Country              string `json:"country"`
	MerchantCategoryCode string `json:"merchant_category_code"`
	Reference            string `json:"reference,omitempty"`
	Checksum             string `json:"checksum"`
}

// Parse verifies the trailing checksum of code and decodes its fields.
func Parse(code string) (*Payload, error) {
	n := len(code)
	if n < 8 || code[n-8:n-4] != checksumHeader {
		return nil, ErrMissingChecksum
	}
	want := CRC16(code[:n-4])
	if got := strings.ToUpper(code[n-4:]); got != want {
		return nil, fmt.Errorf("%w: got %s want %s", ErrChecksumMismatch, got, want)
	}

	fields, err := DecodeFields(code)
	if err != nil {
		return nil, err
	}

	p := &Payload{}
	var hasAccount bool
	for _, f := range fields {
		switch f.Tag {
		case tagPayloadFormat:
			if f.Value != "01" {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Value)
			}
		case tagMerchantAccount:
			if err := p.decodeAccount(f.Value); err != nil {
				return nil, err
			}
			hasAccount = true
		case tagCategoryCode:
			p.MerchantCategoryCode = f.Value
		case tagCurrency:
			p.Currency = f.Value
		case tagAmount:
			p.Amount = f.Value
		case tagCountry:
			p.Country = f.Value
		case tagMerchantName:
			p.RecipientName = f.Value
		case tagMerchantCity:
			p.City = f.Value
		case tagAdditionalData:
			inner, err := DecodeFields(f.Value)
			if err != nil {
				return nil, fmt.Errorf("additional data: %w", err)
			}
			for _, in := range inner {
				if in.Tag == tagReference {
					p.Reference = in.Value
				}
			}
		case tagChecksum:
			p.Checksum = f.Value
		}
	}
	if !hasAccount {
		return nil, ErrNotPix
	}
	return p, nil
}

func (p *Payload) decodeAccount(value string) error {
	inner, err := DecodeFields(value)
	if err != nil {
		return fmt.Errorf("merchant account: %w", err)
	}
	var gui string
	for _, in := range inner {
		switch in.Tag {
		case tagGUI:
			gui = in.Value
		case tagKey:
			p.Key = in.Value
		}
	}
	if !strings.EqualFold(gui, GUI) {
		return fmt.Errorf("%w: %q", ErrNotPix, gui)
	}
	return nil
}
