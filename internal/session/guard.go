package session

// Decision is the guard's verdict for one navigation to a protected view.
type Decision int

const (
	// DecisionLoading defers rendering while the manager is still
	// initializing; neither the view nor a redirect is shown.
	DecisionLoading Decision = iota
	// DecisionRedirect sends the user to the login surface.
	DecisionRedirect
	// DecisionAllow renders the protected view.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	}
	return "unknown"
}

// Guard decides, per navigation, whether a protected view renders. The
// decision is a pure function of the state snapshot and must be recomputed
// from a fresh snapshot on every navigation; it is never cached.
type Guard struct {
	// LoginTarget names the login surface redirects point at.
	LoginTarget string
}

func NewGuard(loginTarget string) *Guard {
	if loginTarget == "" {
		loginTarget = "login"
	}
	return &Guard{LoginTarget: loginTarget}
}

func (g *Guard) Decide(state State) Decision {
	switch state.Status {
	case StatusInitializing:
		return DecisionLoading
	case StatusAuthenticated:
		return DecisionAllow
	default:
		return DecisionRedirect
	}
}
