package txn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"charm-dapp-wallet/rpc"
	"charm-dapp-wallet/signer"
)

// Kind is the closed set of submission failures the UI distinguishes.
type Kind int

const (
	Unknown Kind = iota
	InvalidInput
	NoProvider
	Rejected
	Reverted
	InsufficientFunds
	ArgumentCount
	Network
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case NoProvider:
		return "no provider"
	case Rejected:
		return "rejected"
	case Reverted:
		return "reverted"
	case InsufficientFunds:
		return "insufficient funds"
	case ArgumentCount:
		return "argument count"
	case Network:
		return "network"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidABI      = errors.New("invalid ABI")
	ErrInvalidBytecode = errors.New("invalid bytecode")
	ErrArgumentCount   = errors.New("incorrect number of constructor arguments")
	ErrReverted        = errors.New("transaction reverted")
	ErrNoNetwork       = errors.New("no network selected")
	ErrNoAccount       = errors.New("no account connected")
)

// Error carries the kind of a failed submission and the step it failed in.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(op string, kind Kind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// wrap classifies err unless it already is an *Error.
func wrap(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return fail(op, Classify(err), err)
}

// Classify maps an error from any layer to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, signer.ErrNoProvider):
		return NoProvider
	case signer.IsRejection(err):
		return Rejected
	case errors.Is(err, ErrReverted):
		return Reverted
	case errors.Is(err, ErrArgumentCount):
		return ArgumentCount
	case errors.Is(err, ErrInvalidAddress), errors.Is(err, ErrInvalidABI),
		errors.Is(err, ErrInvalidBytecode), errors.Is(err, rpc.ErrNoCode),
		errors.Is(err, ErrNoNetwork), errors.Is(err, ErrNoAccount):
		return InvalidInput
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return InsufficientFunds
	case strings.Contains(msg, "execution reverted"):
		return Reverted
	case strings.Contains(msg, "argument count mismatch"):
		return ArgumentCount
	}

	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(msg, "connection refused") {
		return Network
	}
	return Unknown
}
