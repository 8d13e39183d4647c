package chain

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SendErrorKind classifies a send-time error so the dispatcher can log
// useful detail on the failure it surfaces.
type SendErrorKind int

const (
	SendErrorOther SendErrorKind = iota
	SendErrorNonceMismatch
	SendErrorUnderpriced
)

type ClassifiedSendError struct {
	Kind SendErrorKind
	// CorrectedNonce is set when Kind == SendErrorNonceMismatch and the
	// node's error message carried the nonce it expected.
	CorrectedNonce uint64
	HasNonce       bool
}

var nonceTooLowRe = regexp.MustCompile(`nonce too low: next nonce (\d+), tx nonce \d+`)

// ClassifySendError only classifies — the dispatcher stops the batch on
// any send error rather than retrying with an adjusted nonce or fee, so
// this never mutates signer state.
func ClassifySendError(err error) ClassifiedSendError {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "nonce too low") || strings.Contains(msg, "nonce too high"):
		if nonce, ok := extractNonceFromError(msg); ok {
			return ClassifiedSendError{Kind: SendErrorNonceMismatch, CorrectedNonce: nonce, HasNonce: true}
		}
		return ClassifiedSendError{Kind: SendErrorNonceMismatch}
	case strings.Contains(msg, "transaction underpriced"):
		return ClassifiedSendError{Kind: SendErrorUnderpriced}
	default:
		return ClassifiedSendError{Kind: SendErrorOther}
	}
}

func extractNonceFromError(msg string) (uint64, bool) {
	matches := nonceTooLowRe.FindStringSubmatch(msg)
	if len(matches) < 2 {
		return 0, false
	}
	nonce, err := strconv.ParseUint(matches[1], 10, 64)
	return nonce, err == nil
}

// PendingNonce queries the signer's next usable nonce at the pending
// block tag, used as the base-nonce step of every batch tick.
func PendingNonce(ctx context.Context, c *Client, address common.Address) (uint64, error) {
	return c.PendingNonceAt(ctx, address)
}
