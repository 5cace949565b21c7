package alert

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"flighttracker-backend/internal/components/assert"
	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/flights"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var tracer = otel.Tracer("flighttracker/alert")

const (
	report_dispatcher_send = "dispatcher.send"
)

const DefaultCurrency = "INR"

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// Configured is false when there is nothing to send mail as.
func (c SmtpConfig) Configured() bool {
	return c.EmailAddress != "" && c.Password != ""
}

func (c SmtpConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

type Options struct {
	Smtp SmtpConfig
	// Currency is the ISO 4217 code every amount is in.
	Currency string
	FromName string
}

type Delivery int

const (
	DeliverySkipped Delivery = iota
	DeliverySent
)

func (d Delivery) String() string {
	if d == DeliverySent {
		return "sent"
	}
	return "skipped"
}

// SendError is a failure to hand the message to the mail server.
type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send alert to %s: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// SendFunc delivers a composed email.
type SendFunc func(ctx context.Context, mail *email.Email) error

type DispatcherOption func(d *Dispatcher)

// WithTransport replaces SMTP delivery.
func WithTransport(send SendFunc) DispatcherOption {
	return func(d *Dispatcher) {
		d.send = send
	}
}

// Dispatcher turns price events into emails.
type Dispatcher struct {
	opts    Options
	tel     telemetry.API
	unit    currency.Unit
	printer *message.Printer
	send    SendFunc
}

func NewDispatcher(opts Options, tel telemetry.API, options ...DispatcherOption) (Dispatcher, error) {
	assert.NotNil(tel, "tel")

	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.FromName == "" {
		opts.FromName = "Flight Tracker"
	}
	unit, err := currency.ParseISO(opts.Currency)
	if err != nil {
		return Dispatcher{}, fmt.Errorf("currency %q: %w", opts.Currency, err)
	}

	d := Dispatcher{
		opts:    opts,
		tel:     telemetry.NewScopedAPI("alert", tel),
		unit:    unit,
		printer: message.NewPrinter(language.English),
	}
	d.send = d.smtpSend
	for _, o := range options {
		o(&d)
	}
	return d, nil
}

func (d Dispatcher) smtpSend(ctx context.Context, mail *email.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	smtpConfig := d.opts.Smtp
	err := mail.Send(
		smtpConfig.Addr(),
		smtp.PlainAuth("", smtpConfig.EmailAddress, smtpConfig.Password, smtpConfig.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(smtpConfig.Addr(), nil)
	}
	return err
}

// FormatAmount renders an amount in the configured currency. The amount is
// rounded to the currency's minor unit first, whole amounts are handed to
// the printer as integers so they stay exact.
func (d Dispatcher) FormatAmount(amount decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(d.unit)
	rounded := amount.Round(int32(scale))

	var value any
	if rounded.Equal(rounded.Truncate(0)) && rounded.Abs().LessThan(maxExactInt) {
		value = rounded.IntPart()
	} else {
		value = rounded.InexactFloat64()
	}
	return d.printer.Sprint(currency.Symbol(d.unit.Amount(value)))
}

var maxExactInt = decimal.NewFromInt(1 << 62)

// Compose builds the email for an event without sending it.
func (d Dispatcher) Compose(event flights.Event) (*email.Email, error) {
	data := d.templateData(event)

	var text bytes.Buffer
	err := textTemplates.ExecuteTemplate(&text, event.Kind.String(), data)
	if err != nil {
		return nil, err
	}
	var html bytes.Buffer
	err = htmlTemplates.ExecuteTemplate(&html, event.Kind.String(), data)
	if err != nil {
		return nil, err
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("%s <%s>", d.opts.FromName, d.opts.Smtp.EmailAddress)
	mail.To = []string{event.Route.Email}
	mail.Subject = subject(event)
	mail.Text = text.Bytes()
	mail.HTML = html.Bytes()
	return mail, nil
}

// Send emails the route's owner about event. When SMTP credentials are
// missing nothing is sent and DeliverySkipped is returned without error.
func (d Dispatcher) Send(ctx context.Context, event flights.Event) (Delivery, error) {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("kind", event.Kind.String()),
		attribute.Int64("route_id", event.Route.ID),
	)

	if !d.opts.Smtp.Configured() {
		span.SetAttributes(attribute.Bool("skipped", true))
		return DeliverySkipped, nil
	}

	mail, err := d.Compose(event)
	if err != nil {
		err = &SendError{Recipient: event.Route.Email, Err: fmt.Errorf("compose: %w", err)}
		d.tel.ReportBroken(report_dispatcher_send, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DeliverySkipped, err
	}

	err = d.send(ctx, mail)
	if err != nil {
		err = &SendError{Recipient: event.Route.Email, Err: err}
		d.tel.ReportWarning(report_dispatcher_send, err, event.Route.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DeliverySkipped, err
	}

	d.tel.ReportDebug("alert sent", event.Kind.String(), event.Route.ID, event.Route.Email)
	return DeliverySent, nil
}
