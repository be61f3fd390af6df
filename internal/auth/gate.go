package auth

import "github.com/hivemindhq/hivemind/internal/models"

// Verdict is a gate decision. Exactly one of the outcomes applies: the request
// proceeds, is redirected, or is answered with the account-status notice.
type Verdict struct {
	Allowed    bool
	RedirectTo string
	// Notice carries the account status to show when the active check fails.
	Notice models.Status
}

// Check inspects the resolved caller (nil means anonymous) and returns a
// verdict. Checks never consult ambient state; the identity is always passed
// in explicitly.
type Check func(account *models.Account) Verdict

func allow() Verdict                      { return Verdict{Allowed: true} }
func redirect(target string) Verdict      { return Verdict{RedirectTo: target} }
func notice(status models.Status) Verdict { return Verdict{Notice: status} }

// Authenticated requires a resolved account; anonymous callers are sent to
// the login page.
func Authenticated(account *models.Account) Verdict {
	if account == nil {
		return redirect("/login")
	}
	return allow()
}

// RequireRole requires the caller to hold exactly the given role. A caller of
// the wrong role is sent to the site root, not an error page.
func RequireRole(role models.Role) Check {
	return func(account *models.Account) Verdict {
		if account == nil || account.Role != role {
			return redirect("/")
		}
		return allow()
	}
}

// RequireActive requires the caller's account status to be active. Other
// statuses short-circuit to the account-status notice carrying the current
// status, rendered rather than redirected.
func RequireActive(account *models.Account) Verdict {
	if account == nil {
		return redirect("/login")
	}
	if account.Status != models.StatusActive {
		return notice(account.Status)
	}
	return allow()
}

// Evaluate runs the checks in order and returns the first failing verdict;
// later checks are not evaluated once one fails.
func Evaluate(account *models.Account, checks ...Check) Verdict {
	for _, check := range checks {
		if v := check(account); !v.Allowed {
			return v
		}
	}
	return allow()
}
