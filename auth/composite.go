package auth

import "context"

// CompositeAuthenticator tries authenticators in order and returns the first
// success. When none succeeds the last failure is returned.
type CompositeAuthenticator struct {
	auths []Authenticator
}

// NewCompositeAuthenticator creates a composite authenticator. Nil entries
// are skipped.
func NewCompositeAuthenticator(auths ...Authenticator) *CompositeAuthenticator {
	c := &CompositeAuthenticator{}
	for _, a := range auths {
		if a != nil {
			c.auths = append(c.auths, a)
		}
	}
	return c
}

func (c *CompositeAuthenticator) Name() string { return "composite" }

// Len returns the number of wrapped authenticators.
func (c *CompositeAuthenticator) Len() int { return len(c.auths) }

func (c *CompositeAuthenticator) Supports(req *Request) bool {
	for _, a := range c.auths {
		if a.Supports(req) {
			return true
		}
	}
	return false
}

func (c *CompositeAuthenticator) Authenticate(ctx context.Context, req *Request) (*Result, error) {
	last := failure(ErrMissingCredentials)
	for _, a := range c.auths {
		if !a.Supports(req) {
			continue
		}
		res, err := a.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		if res.Authenticated {
			return res, nil
		}
		last = res
	}
	return last, nil
}

var _ Authenticator = (*CompositeAuthenticator)(nil)
