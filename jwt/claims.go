package jwt

import "github.com/halimath/compactjose/jwterr"

// validateClaims checks the registered time-based and identity claims
// against policy. Unset claims are not enforced, except that
// RequireExp/RequireNbf make "exp"/"nbf" mandatory and
// RequiredIssuer/ExpectedAudience turn "iss"/"aud" into hard
// requirements.
func validateClaims(p *Payload, policy *Policy) error {
	now := policy.Now()

	if exp, ok, err := p.ExpirationTime(); err != nil {
		return jwterr.WithParam(jwterr.InvalidClaim, "exp")
	} else if !ok && policy.RequireExp {
		return jwterr.WithParam(jwterr.InvalidClaim, "exp")
	} else if ok && now.After(exp.Add(policy.ClockSkew)) {
		return jwterr.New(jwterr.Expired)
	}

	if nbf, ok, err := p.NotBefore(); err != nil {
		return jwterr.WithParam(jwterr.InvalidClaim, "nbf")
	} else if !ok && policy.RequireNbf {
		return jwterr.WithParam(jwterr.InvalidClaim, "nbf")
	} else if ok && now.Before(nbf.Add(-policy.ClockSkew)) {
		return jwterr.New(jwterr.NotYetValid)
	}

	if policy.RequiredIssuer != "" && p.Issuer() != policy.RequiredIssuer {
		return jwterr.WithParam(jwterr.InvalidClaim, "iss")
	}

	if policy.ExpectedAudience != "" {
		aud, err := p.Audience()
		if err != nil {
			return jwterr.WithParam(jwterr.InvalidClaim, "aud")
		}
		found := false
		for _, a := range aud {
			if a == policy.ExpectedAudience {
				found = true
				break
			}
		}
		if !found {
			return jwterr.WithParam(jwterr.InvalidClaim, "aud")
		}
	}

	return nil
}
