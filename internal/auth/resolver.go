package auth

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"storefront/internal/rbac"
)

// Source is one place an entry point accepts an identity from.
type Source struct {
	Scheme    Scheme
	Transport Transport
	// Departments narrows manager cookies. Empty means every department.
	Departments []rbac.Department
}

func Cookie(s Scheme) Source { return Source{Scheme: s, Transport: TransportCookie} }

func Bearer(s Scheme) Source { return Source{Scheme: s, Transport: TransportBearer} }

func ManagerCookie(departments ...rbac.Department) Source {
	return Source{Scheme: SchemeManager, Transport: TransportCookie, Departments: departments}
}

// Acceptance is the set of sources an entry point declares.
type Acceptance []Source

// Attempt records what happened when one carrier was inspected.
type Attempt struct {
	Scheme    Scheme
	Transport Transport
	Carrier   string
	Outcome   Outcome
	Role      rbac.Role

	principalID string
}

// Resolution is the result of resolving a request against an Acceptance.
type Resolution struct {
	Principal *rbac.Principal
	Scheme    Scheme
	Attempts  []Attempt
}

// Forbidden reports a request that presented a validly signed token whose
// role does not belong to the scheme it was issued under.
func (r Resolution) Forbidden() bool {
	if r.Principal != nil {
		return false
	}
	for _, a := range r.Attempts {
		if a.Outcome == OutcomeRoleMismatch {
			return true
		}
	}
	return false
}

// Decide applies guard to the resolution. A role mismatch is forbidden even
// though no principal was produced.
func (r Resolution) Decide(guard *rbac.Guard, allowed ...rbac.Role) rbac.Decision {
	if r.Forbidden() {
		return rbac.DecisionForbidden
	}
	return guard.Authorize(r.Principal, allowed...)
}

// Resolver turns request carriers into at most one principal.
type Resolver struct {
	codecs   *Codecs
	logger   *slog.Logger
	recorder Recorder
}

func NewResolver(codecs *Codecs, logger *slog.Logger, recorder Recorder) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Resolver{codecs: codecs, logger: logger, recorder: recorder}
}

// Resolve inspects the accepted sources in precedence order, admin then
// manager (departments in catalog order) then user, and stops at the first
// verified identity.
func (r *Resolver) Resolve(req *http.Request, accept Acceptance) Resolution {
	sources := make(Acceptance, len(accept))
	copy(sources, accept)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Scheme.rank() < sources[j].Scheme.rank()
	})

	var res Resolution
	seen := make(map[string]struct{})
	for _, src := range sources {
		codec, err := r.codecs.For(src.Scheme)
		if err != nil {
			r.logger.Error("resolver source has no codec", "scheme", src.Scheme)
			continue
		}
		for _, carrier := range carriersOf(src) {
			key := string(src.Scheme) + "|" + carrier
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			attempt := r.try(req, codec, src, carrier)
			res.Attempts = append(res.Attempts, attempt)
			r.recorder.RecordAttempt(string(attempt.Scheme), string(attempt.Outcome))

			if attempt.Outcome != OutcomeAbsent && attempt.Outcome != OutcomeVerified {
				r.logger.Debug("identity attempt rejected",
					"scheme", attempt.Scheme,
					"carrier", attempt.Carrier,
					"outcome", attempt.Outcome,
				)
			}
			if attempt.Outcome == OutcomeVerified {
				res.Principal = &rbac.Principal{ID: attempt.principalID, Role: attempt.Role}
				res.Scheme = src.Scheme
				return res
			}
		}
	}
	return res
}

func (r *Resolver) try(req *http.Request, codec *Codec, src Source, carrier string) Attempt {
	a := Attempt{Scheme: src.Scheme, Transport: src.Transport, Carrier: carrier}

	var token string
	if src.Transport == TransportBearer {
		token = bearerToken(req)
	} else if c, err := req.Cookie(carrier); err == nil {
		token = c.Value
	}

	claims, outcome := codec.Verify(token)
	a.Outcome = outcome
	if outcome != OutcomeVerified {
		return a
	}

	a.Role = claims.Role
	if !src.Scheme.Admits(claims.Role) {
		a.Outcome = OutcomeRoleMismatch
		return a
	}
	a.principalID = claims.ID
	return a
}

func carriersOf(src Source) []string {
	if src.Transport == TransportBearer {
		return []string{headerAuthorization}
	}
	switch src.Scheme {
	case SchemeAdmin:
		return []string{CookieAdmin}
	case SchemeUser:
		return []string{CookieUser}
	}

	departments := src.Departments
	if len(departments) == 0 {
		departments = rbac.Departments
	}
	names := make([]string, 0, len(departments))
	for _, d := range rbac.Departments {
		for _, want := range departments {
			if d == want {
				names = append(names, ManagerCookieName(d))
			}
		}
	}
	return names
}

func bearerToken(req *http.Request) string {
	authHeader := req.Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}
