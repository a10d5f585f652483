package api

import (
	"github.com/samcharles93/klipverify/internal/compare"
	"github.com/samcharles93/klipverify/internal/profile"
)

type ProfileList struct {
	Object string            `json:"object"`
	Data   []profile.Profile `json:"data"`
}

// Verification is a stored verification result.
type Verification struct {
	ID          string          `json:"id"`
	Object      string          `json:"object"`
	CreatedAt   int64           `json:"created_at"`
	MCU         string          `json:"mcu"`
	Filename    string          `json:"filename"`
	Size        int             `json:"size"`
	Status      string          `json:"status"`
	Offset      *int            `json:"offset,omitempty"`
	Application string          `json:"application,omitempty"`
	Version     string          `json:"version,omitempty"`
	Checks      []compare.Check `json:"checks"`
	AllMatched  bool            `json:"all_matched"`
}

type DeleteVerificationResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
