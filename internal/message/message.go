// Package message implements the tag-addressed envelope shared by every
// component of the harness. The engine never assumes a particular wire
// format; it reads and writes fields by integer tag, the way a FIX message
// is addressed by field number rather than by struct field name.
package message

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tag identifies a field within a Message, independent of its value type.
type Tag int

// kind discriminates the closed set of value types a Field can hold.
// Representing the value as a tagged variant avoids an inheritance
// hierarchy of message-field types.
type kind int

const (
	kindString kind = iota
	kindDecimal
	kindInt
	kindChar
	kindTime
)

// Field is a single typed value stored under a Tag.
type Field struct {
	kind    kind
	str     string
	dec     decimal.Decimal
	integer int64
	ch      byte
	t       time.Time
}

func StringField(v string) Field           { return Field{kind: kindString, str: v} }
func DecimalField(v decimal.Decimal) Field  { return Field{kind: kindDecimal, dec: v} }
func IntField(v int64) Field                { return Field{kind: kindInt, integer: v} }
func CharField(v byte) Field                { return Field{kind: kindChar, ch: v} }
func TimeField(v time.Time) Field           { return Field{kind: kindTime, t: v} }

// Message is a tag-addressed envelope split into header and body fields.
// Zero value is not usable; construct with New.
type Message struct {
	header map[Tag]Field
	body   map[Tag]Field
}

// New creates an empty Message.
func New() *Message {
	return &Message{
		header: make(map[Tag]Field),
		body:   make(map[Tag]Field),
	}
}

// Clone returns a copy of m with its own header and body maps, for callers
// that must not mutate a shared request or rule-held response template.
// Nothing in this module calls it.
func (m *Message) Clone() *Message {
	c := New()
	for k, v := range m.header {
		c.header[k] = v
	}
	for k, v := range m.body {
		c.body[k] = v
	}
	return c
}

// --- body accessors ---

func (m *Message) SetString(tag Tag, v string) { m.body[tag] = StringField(v) }
func (m *Message) SetDecimal(tag Tag, v decimal.Decimal) { m.body[tag] = DecimalField(v) }
func (m *Message) SetInt(tag Tag, v int64) { m.body[tag] = IntField(v) }
func (m *Message) SetChar(tag Tag, v byte) { m.body[tag] = CharField(v) }
func (m *Message) SetTime(tag Tag, v time.Time) { m.body[tag] = TimeField(v) }

// IsSet reports whether tag is present in the body.
func (m *Message) IsSet(tag Tag) bool {
	_, ok := m.body[tag]
	return ok
}

func (m *Message) GetString(tag Tag) (string, error) {
	f, ok := m.body[tag]
	if !ok || f.kind != kindString {
		return "", fmt.Errorf("message: tag %d not set as string", tag)
	}
	return f.str, nil
}

func (m *Message) GetDecimal(tag Tag) (decimal.Decimal, error) {
	f, ok := m.body[tag]
	if !ok || f.kind != kindDecimal {
		return decimal.Decimal{}, fmt.Errorf("message: tag %d not set as decimal", tag)
	}
	return f.dec, nil
}

func (m *Message) GetInt(tag Tag) (int64, error) {
	f, ok := m.body[tag]
	if !ok || f.kind != kindInt {
		return 0, fmt.Errorf("message: tag %d not set as int", tag)
	}
	return f.integer, nil
}

func (m *Message) GetChar(tag Tag) (byte, error) {
	f, ok := m.body[tag]
	if !ok || f.kind != kindChar {
		return 0, fmt.Errorf("message: tag %d not set as char", tag)
	}
	return f.ch, nil
}

func (m *Message) GetTime(tag Tag) (time.Time, error) {
	f, ok := m.body[tag]
	if !ok || f.kind != kindTime {
		return time.Time{}, fmt.Errorf("message: tag %d not set as time", tag)
	}
	return f.t, nil
}

// --- header accessors ---
// Header fields are distinguished from body fields (spec §3): sender,
// target, and similar routing metadata live here so interceptor header
// normalisation never collides with application-level tags.

func (m *Message) SetHeaderString(tag Tag, v string) { m.header[tag] = StringField(v) }

func (m *Message) GetHeaderString(tag Tag) (string, error) {
	f, ok := m.header[tag]
	if !ok || f.kind != kindString {
		return "", fmt.Errorf("message: header tag %d not set as string", tag)
	}
	return f.str, nil
}

func (m *Message) IsHeaderSet(tag Tag) bool {
	_, ok := m.header[tag]
	return ok
}

// Well-known header tags used by interceptor header normalisation.
const (
	TagSenderCompID Tag = -1
	TagTargetCompID Tag = -2
)

// Well-known body tags shared by the order-request/trade-record domain.
const (
	TagClOrdID   Tag = 11
	TagSymbol    Tag = 55
	TagSide      Tag = 54
	TagOrderQty  Tag = 38
	TagOrdType   Tag = 40
	TagPrice     Tag = 44
	TagCurrency  Tag = 15
	TagAccount   Tag = 1
	TagExecType  Tag = 150
	TagText      Tag = 58
	TagOrderID   Tag = 37
	TagTimeInForce Tag = 59
)
