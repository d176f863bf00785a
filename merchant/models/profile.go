package models

import (
	"strings"

	"github.com/alovak/brcode-playground/internal/brcode"
)

// Profile holds the payee data stamped on every generated BR Code.
type Profile struct {
	PixKey        string `json:"pixKey" bson:"pixKey"`
	RecipientName string `json:"recipientName" bson:"recipientName"`
	City          string `json:"city" bson:"city"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (p Profile) Trimmed() Profile {
	return Profile{
		PixKey:        strings.TrimSpace(p.PixKey),
		RecipientName: strings.TrimSpace(p.RecipientName),
		City:          strings.TrimSpace(p.City),
	}
}

// Complete reports whether key, name and city are all set.
func (p Profile) Complete() bool {
	t := p.Trimmed()
	return t.PixKey != "" && t.RecipientName != "" && t.City != ""
}

func (p Profile) ToBR() brcode.MerchantProfile {
	return brcode.MerchantProfile{
		Key:           p.PixKey,
		RecipientName: p.RecipientName,
		City:          p.City,
	}
}
