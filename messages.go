package main

import (
	"charm-dapp-wallet/ledger"
	"charm-dapp-wallet/txn"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// sessionMsg reports a finished session operation (connect, network switch,
// account switch, balance refresh)
type sessionMsg struct {
	op  string
	err error
}

// panelMsg reports a finished panel fetch. applied is false when the result
// arrived after the panel was reset or refetched and was dropped.
type panelMsg struct {
	panel   string
	applied bool
	count   int
	err     error
}

// marketTickMsg fires the next market refetch while the market page is shown
type marketTickMsg struct {
	gen int
}

// minedMsg contains the ledger backend's answer to a mine request
type minedMsg struct {
	mined ledger.Mined
	err   error
}

// transferDoneMsg contains the outcome of a native or token transfer
type transferDoneMsg struct {
	asset string
	res   txn.Result
	err   error
}

// deployDoneMsg contains the outcome of a contract deployment
type deployDoneMsg struct {
	res txn.DeploymentResult
	err error
}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	what string
}

// clearFlashMsg clears transient feedback lines
type clearFlashMsg struct{}
