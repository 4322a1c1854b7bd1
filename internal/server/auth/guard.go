package auth

import "errors"

var (
	ErrMissing  = errors.New("x-api-key header is missing")
	ErrBadCount = errors.New("x-api-key header is repeated")
	ErrInvalid  = errors.New("x-api-key token is invalid")
)

// Guard turns the values of the x-api-key header into a caller identity.
type Guard struct {
	authority *Authority
}

func NewGuard(a *Authority) *Guard {
	return &Guard{authority: a}
}

// Authenticate checks the header values of one request. The returned
// identity belongs to that request only.
func (g *Guard) Authenticate(values []string) (*Identity, error) {
	switch len(values) {
	case 0:
		return nil, ErrMissing
	case 1:
	default:
		return nil, ErrBadCount
	}

	p, err := g.authority.Verify(values[0])
	if err != nil {
		return nil, ErrInvalid
	}
	if g.authority.IsExpired(p) {
		return nil, ErrExpired
	}

	id := p.Identity
	return &id, nil
}
