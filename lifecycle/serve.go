package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vinayprograms/hostkit/bus"
	hosterrors "github.com/vinayprograms/hostkit/errors"
	"github.com/vinayprograms/hostkit/report"
)

// ShutdownRequest is the wire format of an inbound shutdown request. The
// requester names the two reply subjects; the coordinator acknowledges on
// exactly one of them, never both.
type ShutdownRequest struct {
	Reason  string `json:"reason"`
	Confirm string `json:"confirm"`
	Cancel  string `json:"cancel"`
}

// Serve subscribes to the request subject and drives the coordinator for
// each inbound request until the context is canceled or the bus closes.
// Malformed requests are reported and skipped, never fatal.
func (c *Coordinator) Serve(ctx context.Context) error {
	sub, err := c.config.Bus.Subscribe(c.config.RequestSubject)
	if err != nil {
		return hosterrors.WrapWithCode(err, hosterrors.ErrCodeTransportClosed,
			"subscribing to shutdown requests")
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			c.handleRequest(ctx, msg.Data)
		}
	}
}

// handleRequest decodes and executes one inbound request.
func (c *Coordinator) handleRequest(ctx context.Context, data []byte) {
	var req ShutdownRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.reporter().Report(report.SeverityWarning,
			fmt.Sprintf("malformed shutdown request: %v", err))
		return
	}

	reason, ok := ParseReason(req.Reason)
	if !ok {
		c.reporter().Report(report.SeverityWarning,
			fmt.Sprintf("shutdown request with unknown reason %q", req.Reason))
		return
	}

	if _, err := c.RequestShutdown(ctx, reason, req.Confirm, req.Cancel); err != nil {
		if errors.Is(err, ErrShutdownInFlight) {
			c.reporter().Report(report.SeverityWarning,
				"shutdown request rejected: another request is in flight")
			return
		}
		c.reporter().Report(report.SeverityError,
			fmt.Sprintf("shutdown request failed: %v", err))
	}
}

// SendShutdownRequest publishes a shutdown request on behalf of an external
// requester and waits for the acknowledgement on the confirm or cancel
// subject. It returns whether the shutdown was vetoed and the identifier of
// the replying instance.
func SendShutdownRequest(ctx context.Context, b bus.MessageBus, subject string, reason ShutdownReason, confirmSubject, cancelSubject string) (vetoed bool, instance string, err error) {
	confirmSub, err := b.Subscribe(confirmSubject)
	if err != nil {
		return false, "", hosterrors.WrapWithCode(err, hosterrors.ErrCodeTransportClosed,
			"subscribing to confirm subject")
	}
	defer confirmSub.Unsubscribe()

	cancelSub, err := b.Subscribe(cancelSubject)
	if err != nil {
		return false, "", hosterrors.WrapWithCode(err, hosterrors.ErrCodeTransportClosed,
			"subscribing to cancel subject")
	}
	defer cancelSub.Unsubscribe()

	data, err := json.Marshal(ShutdownRequest{
		Reason:  reason.String(),
		Confirm: confirmSubject,
		Cancel:  cancelSubject,
	})
	if err != nil {
		return false, "", hosterrors.Wrap(err, "encoding shutdown request")
	}

	if err := b.Publish(subject, data); err != nil {
		return false, "", hosterrors.WrapWithCode(err, hosterrors.ErrCodeTransportClosed,
			"publishing shutdown request")
	}

	select {
	case msg, ok := <-confirmSub.Messages():
		if !ok {
			return false, "", hosterrors.TransportClosed("confirm subject closed")
		}
		return false, string(msg.Data), nil
	case msg, ok := <-cancelSub.Messages():
		if !ok {
			return false, "", hosterrors.TransportClosed("cancel subject closed")
		}
		return true, string(msg.Data), nil
	case <-ctx.Done():
		return false, "", ctx.Err()
	}
}
