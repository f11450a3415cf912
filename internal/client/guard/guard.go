// Package guard decides what a navigation attempt gets: the requested view,
// a redirect, or a loading indicator. Decisions are a pure function of the
// session snapshot and the requested path; no network, no side effects.
package guard

import "github.com/tandahq/tanda/internal/client/session"

// Well-known navigation paths.
const (
	PathSignIn    = "/auth/login"
	PathSetupPin  = "/auth/setup-pin"
	PathOrganizer = "/organizer"
	PathMember    = "/member"
)

// Decision is the outcome of evaluating a navigation attempt.
type Decision int

const (
	// ShowLoading renders a loading indicator while initialization is in
	// flight, instead of flashing a premature redirect.
	ShowLoading Decision = iota

	// RedirectToSignIn sends the user to the sign-in screen, carrying the
	// originally requested path for the return trip.
	RedirectToSignIn

	// RedirectToPinSetup forces an authenticated user with a pending PIN
	// to choose one before anything else.
	RedirectToPinSetup

	// RenderRequestedView grants the navigation.
	RenderRequestedView
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show-loading"
	case RedirectToSignIn:
		return "redirect-to-sign-in"
	case RedirectToPinSetup:
		return "redirect-to-pin-setup"
	case RenderRequestedView:
		return "render-requested-view"
	default:
		return "unknown"
	}
}

// Result carries the decision and, for sign-in redirects, the path to
// return to afterwards.
type Result struct {
	Decision Decision

	// ReturnTo is the originally requested path, set when Decision is
	// RedirectToSignIn.
	ReturnTo string
}

// Evaluate applies the guard rules in order. It is re-run on every
// navigation and on every session store mutation.
//
// An authenticated snapshot with no user (profile fetch failed with "not
// found") routes to sign-in rather than rendering: a guarded view cannot
// assume a profile, and a cached profile without a session must never count
// as authenticated.
func Evaluate(snap session.Snapshot, requestedPath string) Result {
	if snap.IsLoading {
		return Result{Decision: ShowLoading}
	}

	if !snap.IsAuthenticated || snap.User == nil {
		return Result{Decision: RedirectToSignIn, ReturnTo: requestedPath}
	}

	if snap.User.Pin.IsPending() && requestedPath != PathSetupPin {
		return Result{Decision: RedirectToPinSetup}
	}

	return Result{Decision: RenderRequestedView}
}
