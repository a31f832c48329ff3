package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/provider"
)

type sendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type sendCodeResponse struct {
	SessionInfo string `json:"sessionInfo"`
}

// VerifyPhoneNumber requests an SMS code. All outcomes, including transport
// failures, are reported through cb; the returned error is only non-nil when
// ctx is already done.
//
// The REST API has no SMS auto-retrieval, so OnAutoVerified never fires.
// OnTimeout fires PhoneAutoRetrievalTimeout after the code was sent unless
// ctx is cancelled first.
//
// The sendVerificationCode endpoint takes no resend token. A non-nil
// resendToken only advances the local token sequence, so tokens handed out
// for a resent code keep increasing across clients.
func (c *Client) VerifyPhoneNumber(ctx context.Context, phoneNumber string, resendToken *int, cb provider.PhoneCallbacks) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var resp sendCodeResponse
	err := c.call(ctx, "sendVerificationCode", sendCodeRequest{PhoneNumber: phoneNumber}, &resp)
	if err != nil {
		if ctx.Err() == nil && cb.OnFailed != nil {
			cb.OnFailed(err)
		}
		return nil
	}

	c.mu.Lock()
	if resendToken != nil && *resendToken > c.resendSeq {
		c.resendSeq = *resendToken
	}
	c.resendSeq++
	token := c.resendSeq
	c.mu.Unlock()

	c.log.Debug(ctx, "verification code sent", "resend", resendToken != nil, "token", token)

	if cb.OnCodeSent != nil {
		cb.OnCodeSent(resp.SessionInfo, &token)
	}

	if c.cfg.PhoneAutoRetrievalTimeout > 0 && cb.OnTimeout != nil {
		go func(sessionInfo string) {
			t := time.NewTimer(c.cfg.PhoneAutoRetrievalTimeout)
			defer t.Stop()
			select {
			case <-t.C:
				cb.OnTimeout(sessionInfo)
			case <-ctx.Done():
			}
		}(resp.SessionInfo)
	}
	return nil
}
