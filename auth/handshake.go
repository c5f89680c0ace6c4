package auth

import (
	"fmt"
	"net/http"

	"presence-lab/domain"
	"presence-lab/errors"
)

// HandshakeResolver reads the claimed identity of an incoming socket.
// A signed token always wins. The plain userId parameter is only honoured
// when allowPlainIdentity is set, otherwise such a socket stays anonymous.
type HandshakeResolver struct {
	secret             []byte
	allowPlainIdentity bool
}

func NewHandshakeResolver(secret string, allowPlainIdentity bool) *HandshakeResolver {
	return &HandshakeResolver{secret: []byte(secret), allowPlainIdentity: allowPlainIdentity}
}

// Resolve returns the empty identity for an anonymous socket.
// An error means the socket presented a token that can not be trusted.
func (h *HandshakeResolver) Resolve(r *http.Request) (domain.UserID, error) {
	query := r.URL.Query()
	if token := query.Get("token"); token != "" {
		claims, err := ValidateToken(h.secret, token)
		if err != nil {
			return "", fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
		}
		return domain.UserID(claims.UserID), nil
	}
	if h.allowPlainIdentity {
		return domain.UserID(query.Get("userId")), nil
	}
	return "", nil
}
