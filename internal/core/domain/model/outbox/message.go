package outbox

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/errs"
)

var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage constructor")

type Status int

const (
	UnknownStatus Status = iota
	Pending
	Dispatched
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Dispatched:
		return "DISPATCHED"
	case UnknownStatus:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case "PENDING":
		return Pending, nil
	case "DISPATCHED":
		return Dispatched, nil
	default:
		return UnknownStatus, errs.NewValueIsInvalidErrorWithCause("outbox status", fmt.Errorf("%q is not a known status", s))
	}
}

// Message is one outbound command. It is written in the same transaction as
// the order transition and stays Pending until a send succeeds.
type Message struct {
	id           kernel.UUID
	orderID      kernel.UUID
	commandType  string
	destination  string
	payload      []byte
	status       Status
	attempts     int
	lastError    string
	createdAt    time.Time
	dispatchedAt *time.Time

	isConstructed bool
}

// NewMessage creates a pending message. destination is the topic the command
// is published to.
func NewMessage(id, orderID kernel.UUID, commandType, destination string, payload []byte, createdAt time.Time) (*Message, error) {
	m := &Message{
		status:        Pending,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		m.setID(id),
		m.setOrderID(orderID),
		m.setCommandType(commandType),
		m.setDestination(destination),
		m.setPayload(payload),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RestoreMessage rebuilds a message read from storage.
func RestoreMessage(
	id, orderID kernel.UUID,
	commandType, destination string,
	payload []byte,
	status Status,
	attempts int,
	lastError string,
	createdAt time.Time,
	dispatchedAt *time.Time,
) (*Message, error) {
	m, err := NewMessage(id, orderID, commandType, destination, payload, createdAt)
	if err != nil {
		return nil, err
	}

	if status != Pending && status != Dispatched {
		return nil, errs.NewValueIsInvalidError("outbox status")
	}
	if attempts < 0 {
		return nil, errs.NewValueIsOutOfRangeError("attempts", attempts, 0, "unbounded")
	}

	m.status = status
	m.attempts = attempts
	m.lastError = lastError
	m.dispatchedAt = dispatchedAt
	return m, nil
}

func (m *Message) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMessageIsNotConstructed
	}
	return nil
}

func (m *Message) ID() kernel.UUID          { return m.id }
func (m *Message) OrderID() kernel.UUID     { return m.orderID }
func (m *Message) CommandType() string      { return m.commandType }
func (m *Message) Destination() string      { return m.destination }
func (m *Message) Payload() []byte          { return m.payload }
func (m *Message) Status() Status           { return m.status }
func (m *Message) Attempts() int            { return m.attempts }
func (m *Message) LastError() string        { return m.lastError }
func (m *Message) CreatedAt() time.Time     { return m.createdAt }
func (m *Message) DispatchedAt() *time.Time { return m.dispatchedAt }
func (m *Message) IsDispatched() bool       { return m.status == Dispatched }

// MarkDispatched records a successful send. Marking twice is a no-op so that a
// relay pass racing the inline send does not fail.
func (m *Message) MarkDispatched(at time.Time) {
	if m.status == Dispatched {
		return
	}
	at = at.UTC()
	m.status = Dispatched
	m.attempts++
	m.lastError = ""
	m.dispatchedAt = &at
}

// RecordFailure counts a failed send attempt.
func (m *Message) RecordFailure(cause error) {
	if m.status == Dispatched {
		return
	}
	m.attempts++
	if cause != nil {
		m.lastError = cause.Error()
	}
}

func (m *Message) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	m.id = id
	return nil
}

func (m *Message) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("order id", err)
	}
	m.orderID = id
	return nil
}

func (m *Message) setCommandType(commandType string) error {
	if strings.TrimSpace(commandType) == "" {
		return errs.NewValueIsRequiredError("command type")
	}
	m.commandType = commandType
	return nil
}

func (m *Message) setDestination(destination string) error {
	if strings.TrimSpace(destination) == "" {
		return errs.NewValueIsRequiredError("destination")
	}
	m.destination = destination
	return nil
}

func (m *Message) setPayload(payload []byte) error {
	if len(payload) == 0 {
		return errs.NewValueIsRequiredError("payload")
	}
	m.payload = payload
	return nil
}
