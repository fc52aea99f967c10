package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/contentcompass/compass/pkg/models"
)

// ErrInvalidCredential is returned when a credential fails validation on
// entering live mode.
var ErrInvalidCredential = errors.New("invalid credential")

// Origin says where a fetch is served from.
type Origin string

const (
	// OriginFixture serves bundled demo data.
	OriginFixture Origin = "fixture"
	// OriginRemote calls the live API.
	OriginRemote Origin = "remote"
)

// Source is the resolved data source for one resource kind.
type Source struct {
	Origin Origin
	Kind   models.ResourceKind
}

// Controller owns the mode and credential. The credential lives in memory
// only; nothing here writes it to storage or logs.
type Controller struct {
	mode models.Mode
	cred string
}

// NewController returns a controller in demo mode with no credential.
func NewController() *Controller {
	return &Controller{mode: models.ModeDemo}
}

// SetMode switches to mode. Entering live requires a credential of at least
// eight characters from [A-Za-z0-9._-] after trimming; on a bad credential
// the controller keeps its previous mode and credential. Switching to demo
// drops the credential.
func (c *Controller) SetMode(mode models.Mode, credential string) error {
	switch mode {
	case models.ModeDemo:
		c.mode = models.ModeDemo
		c.cred = ""
		return nil
	case models.ModeLive:
		cred := strings.TrimSpace(credential)
		if !validCredential(cred) {
			return fmt.Errorf("enter live mode: %w", ErrInvalidCredential)
		}
		c.mode = models.ModeLive
		c.cred = cred
		return nil
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// ResolveSource maps the current mode to the data source for kind. It has no
// side effects.
func (c *Controller) ResolveSource(kind models.ResourceKind) Source {
	if c.mode == models.ModeLive {
		return Source{Origin: OriginRemote, Kind: kind}
	}
	return Source{Origin: OriginFixture, Kind: kind}
}

// CurrentMode returns the active mode.
func (c *Controller) CurrentMode() models.Mode {
	return c.mode
}

// HasCredential reports whether a live credential is loaded.
func (c *Controller) HasCredential() bool {
	return c.cred != ""
}

// credential returns the in-memory credential for outbound requests.
func (c *Controller) credential() string {
	return c.cred
}

// fingerprint returns a one-way hash naming the loaded credential, or ""
// when none is loaded. Only the hash may be compared or stored.
func (c *Controller) fingerprint() string {
	if c.cred == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.cred))
	return hex.EncodeToString(sum[:])
}

func validCredential(s string) bool {
	if len(s) < 8 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
