package models

// Mode selects where fetches are served from.
type Mode string

const (
	// ModeDemo serves every fetch from bundled fixture data at zero cost.
	ModeDemo Mode = "demo"
	// ModeLive serves fetches from the remote API and charges credits.
	ModeLive Mode = "live"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDemo || m == ModeLive
}
