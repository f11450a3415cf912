package tui

// StateChangedMsg is sent into the program whenever the session store
// mutates, driving reactive guard re-evaluation. The application wires the
// store subscription to program.Send at startup.
type StateChangedMsg struct{}

// ConnectivityMsg reports an online/offline transition from the observer.
type ConnectivityMsg struct {
	Online bool
}

// initDoneMsg is sent when the session store's Initialize call returns.
type initDoneMsg struct{}

// signInResultMsg is sent when an asynchronous sign-in completes.
type signInResultMsg struct {
	err error
}

// pinSetupResultMsg is sent when saving a freshly chosen PIN completes.
type pinSetupResultMsg struct {
	err error
}

// logoutResultMsg is sent when an asynchronous logout completes.
type logoutResultMsg struct {
	err error
}
