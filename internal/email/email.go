package email

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/Domenick1991/applane/internal/kafka"
)

// Sender turns audit events into passenger notifications. Delivery is a line
// written to out.
type Sender struct {
	out io.Writer
}

func NewSender() *Sender {
	return NewSenderTo(os.Stdout)
}

func NewSenderTo(out io.Writer) *Sender {
	return &Sender{out: out}
}

var subjects = map[string]string{
	string(domain.EventPassengerAdded):   "Welcome aboard",
	string(domain.EventPassengerRemoved): "Your account was deleted",
	string(domain.EventEmailChanged):     "Your email address changed",
	string(domain.EventFlightBooked):     "Booking confirmed",
	string(domain.EventFlightCancelled):  "Booking cancelled",
}

// Notifies reports whether events of type typ produce an email.
func Notifies(typ string) bool {
	_, ok := subjects[typ]
	return ok
}

// Send delivers a notification for event. Events without a recipient or of a
// type passengers are not told about are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, ok := subjects[event.Type]
	if !ok || event.Email == "" {
		return nil
	}
	_, err := fmt.Fprintf(s.out, "send email to %s: %s: %s\n", event.Email, subject, event.Description)
	return err
}
