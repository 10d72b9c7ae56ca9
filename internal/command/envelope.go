package command

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Envelope describes one command sent to the worker together with the
// outcome the worker fills in before it signals completion.
//
// Everything except Outcome is fixed once the envelope has been dispatched.
type Envelope struct {
	// CorrelationID is generated per envelope so that two commands with the
	// same parameters issued by overlapping cycles can be told apart.
	CorrelationID string       `msgpack:"correlation_id"`
	Kind          Kind         `msgpack:"kind"`
	Account       string       `msgpack:"account"`
	Timeline      TimelineType `msgpack:"timeline"`
	ItemID        int64        `msgpack:"item_id"`

	Outcome Outcome `msgpack:"outcome"`
}

// New creates an envelope with a fresh correlation ID
func New(kind Kind, account string, timeline TimelineType, itemID int64) *Envelope {
	return &Envelope{
		CorrelationID: uuid.New().String(),
		Kind:          kind,
		Account:       account,
		Timeline:      timeline,
		ItemID:        itemID,
	}
}

// NewAutomaticUpdate creates the envelope a sync cycle dispatches for an account
func NewAutomaticUpdate(account string) *Envelope {
	return New(KindAutomaticUpdate, account, TimelineAll, 0)
}

// SameCommand reports whether both envelopes request the same operation:
// equal kind, account, timeline and item ID. The outcome and correlation ID
// are not compared.
func (e *Envelope) SameCommand(other *Envelope) bool {
	if e == nil || other == nil {
		return false
	}
	return e.Kind == other.Kind &&
		e.Account == other.Account &&
		e.Timeline == other.Timeline &&
		e.ItemID == other.ItemID
}

// Matches reports whether other is a completion of this exact dispatch
func (e *Envelope) Matches(other *Envelope) bool {
	return e.SameCommand(other) && e.CorrelationID == other.CorrelationID
}

// Clone returns a copy that shares no state with e
func (e *Envelope) Clone() *Envelope {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// String returns a short description for logs
func (e *Envelope) String() string {
	return fmt.Sprintf("%s account=%s timeline=%s item=%d id=%s",
		e.Kind, e.Account, e.Timeline, e.ItemID, e.CorrelationID)
}

// Encode serializes an envelope into a transport frame
func Encode(e *Envelope) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("encode envelope: nil envelope")
	}
	frame, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return frame, nil
}

// Decode parses a transport frame produced by Encode
func Decode(frame []byte) (*Envelope, error) {
	var e Envelope
	if err := msgpack.Unmarshal(frame, &e); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if e.CorrelationID == "" {
		return nil, fmt.Errorf("decode envelope: missing correlation id")
	}
	return &e, nil
}
