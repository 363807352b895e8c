package authz

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
	"github.com/mattiachiarle/ezwallet-sub000/pkg/tokens"
)

// Mode selects the authorization policy a handler requests.
type Mode string

const (
	ModeUser  Mode = "User"
	ModeAdmin Mode = "Admin"
	ModeGroup Mode = "Group"
)

// Options is the authorization request descriptor a handler builds from its
// route parameters.
type Options struct {
	Mode     Mode
	Username string   // comparison target for ModeUser
	Emails   []string // member email set for ModeGroup
}

// Verdict is the outcome of one authorization evaluation. When the access
// token was silently re-minted during the evaluation, RefreshedTokenMessage
// carries the notice handlers must forward to the client.
type Verdict struct {
	Authorized            bool
	Cause                 string
	RefreshedTokenMessage string
}

// Causes surfaced to clients. Denials are reported as values, never errors.
const (
	CauseAuthorized      = "Authorized"
	CauseUnauthorized    = "Unauthorized"
	CauseMissingInfo     = "Token is missing information"
	CauseMismatchedUsers = "Mismatched users"
	CauseLoginAgain      = "Perform login again"
	CauseWrongUser       = "Wrong User auth request"
	CauseWrongAdmin      = "Wrong Admin auth request"
	CauseWrongGroup      = "Wrong Group auth request"
)

// RefreshedMessage is attached to the verdict whenever a replacement access
// cookie was emitted, so the client knows to persist the new token.
const RefreshedMessage = "Access token has been refreshed. Remember to copy the new one in the headers of subsequent calls"

// Evaluator reconciles the two session cookies against a requested
// authorization mode, re-minting the access token when it has expired but
// the refresh token is still valid.
type Evaluator struct {
	codec *tokens.Codec
}

func NewEvaluator(codec *tokens.Codec) *Evaluator {
	return &Evaluator{codec: codec}
}

// Verify evaluates the request's token pair against opts. Renewal of the
// access cookie is a side effect on w and happens whether or not the final
// verdict allows the request. The returned error is reserved for
// infrastructure faults (codec misconfiguration); auth-domain denials are
// reported through the verdict.
func (e *Evaluator) Verify(w http.ResponseWriter, r *http.Request, opts Options) (Verdict, error) {
	accessCookie, accCookieErr := r.Cookie(AccessCookieName)
	refreshCookie, refCookieErr := r.Cookie(RefreshCookieName)
	if accCookieErr != nil || refCookieErr != nil ||
		accessCookie.Value == "" || refreshCookie.Value == "" {
		return deny(CauseUnauthorized), nil
	}

	access, accErr := e.codec.Verify(accessCookie.Value)
	refresh, refErr := e.codec.Verify(refreshCookie.Value)

	d := decide(access, accErr, refresh, refErr, opts)

	if d.renew {
		replacement, err := e.codec.IssueAccessToken(tokens.Claims{
			Username: refresh.Username,
			Email:    refresh.Email,
			ID:       refresh.ID,
			Role:     refresh.Role,
		})
		if err != nil {
			return Verdict{}, fmt.Errorf("re-minting access token: %w", err)
		}
		http.SetCookie(w, AccessCookie(replacement, e.codec.AccessTTL()))
		d.verdict.RefreshedTokenMessage = RefreshedMessage
	}

	return d.verdict, nil
}

type decision struct {
	verdict Verdict
	renew   bool
}

// decide is the dual-token state machine. It is pure: one call maps the two
// decode outcomes and the requested mode to a verdict plus a renewal flag,
// with the mode predicate applied exactly once, on the best available claim
// set.
func decide(access *tokens.Claims, accErr error, refresh *tokens.Claims, refErr error, opts Options) decision {
	switch {
	case accErr != nil && !errors.Is(accErr, tokens.ErrExpiredToken):
		return decision{verdict: deny(accErr.Error())}

	case refErr != nil && !errors.Is(refErr, tokens.ErrExpiredToken):
		return decision{verdict: deny(refErr.Error())}

	case accErr == nil && refErr == nil:
		if !access.Complete() || !refresh.Complete() {
			return decision{verdict: deny(CauseMissingInfo)}
		}
		if !access.SameUser(refresh) {
			return decision{verdict: deny(CauseMismatchedUsers)}
		}
		return decision{verdict: applyMode(access, opts)}

	case refErr == nil:
		// Access expired, refresh valid: renew and evaluate against the
		// refresh claims. The claim-triple equality check is intentionally
		// not repeated here; renewal trusts the refresh token alone.
		if !refresh.Complete() {
			return decision{verdict: deny(CauseMissingInfo), renew: true}
		}
		return decision{verdict: applyMode(refresh, opts), renew: true}

	default:
		// Refresh expired. Terminal regardless of the access token's state:
		// the caller must authenticate again.
		return decision{verdict: deny(CauseLoginAgain)}
	}
}

func applyMode(claims *tokens.Claims, opts Options) Verdict {
	switch opts.Mode {
	case ModeUser:
		if claims.Username == opts.Username {
			return allow()
		}
		return deny(CauseWrongUser)
	case ModeAdmin:
		if claims.Role == models.RoleAdmin {
			return allow()
		}
		return deny(CauseWrongAdmin)
	case ModeGroup:
		if slices.Contains(opts.Emails, claims.Email) {
			return allow()
		}
		return deny(CauseWrongGroup)
	default:
		return deny(fmt.Sprintf("unknown authorization mode %q", opts.Mode))
	}
}

func allow() Verdict {
	return Verdict{Authorized: true, Cause: CauseAuthorized}
}

func deny(cause string) Verdict {
	return Verdict{Authorized: false, Cause: cause}
}
