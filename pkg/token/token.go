package token

import (
	"strings"

	"blackjack-server/internal/rng"
)

// RoomCodeLength is the length of every room code
const RoomCodeLength = 6

// roomCodeAlphabet has no lowercase letters so codes can be read aloud
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodes generates short room codes
type RoomCodes struct {
	gen rng.Generator
}

// NewRoomCodes returns a room code generator. Production code should pass rng.Crypto.
func NewRoomCodes(gen rng.Generator) *RoomCodes {
	return &RoomCodes{gen: gen}
}

// Generate returns a random code of RoomCodeLength characters from A-Z and 0-9
func (r *RoomCodes) Generate() string {
	var sb strings.Builder
	sb.Grow(RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		sb.WriteByte(roomCodeAlphabet[r.gen.Intn(len(roomCodeAlphabet))])
	}

	return sb.String()
}

// IsRoomCode returns true if s could have been produced by Generate
func IsRoomCode(s string) bool {
	if len(s) != RoomCodeLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(roomCodeAlphabet, rune(s[i])) {
			return false
		}
	}

	return true
}
