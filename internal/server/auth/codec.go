package auth

import (
	"errors"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Payload field numbers. Fields are always written in this order.
const (
	fieldID           protowire.Number = 1
	fieldUsername     protowire.Number = 2
	fieldNickname     protowire.Number = 3
	fieldEmail        protowire.Number = 4
	fieldPasswordHash protowire.Number = 5
	fieldActivated    protowire.Number = 6
	fieldActivatedAt  protowire.Number = 7
	fieldExpiresAt    protowire.Number = 15
)

var errPayload = errors.New("malformed payload")

func encodePayload(p *Payload) []byte {
	var b []byte
	id := &p.Identity

	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(id.ID))
	b = appendString(b, fieldUsername, id.Username)
	b = appendString(b, fieldNickname, id.Nickname)
	b = appendString(b, fieldEmail, id.Email)
	b = appendString(b, fieldPasswordHash, id.PasswordHash)
	b = protowire.AppendTag(b, fieldActivated, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(id.Activated))
	if id.ActivatedAt != nil {
		b = appendTime(b, fieldActivatedAt, *id.ActivatedAt)
	}
	b = appendTime(b, fieldExpiresAt, p.ExpiresAt)

	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(t.UnixNano()))
}

func decodePayload(b []byte) (*Payload, error) {
	p := &Payload{}
	var last protowire.Number
	var hasExpiry bool

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 || num <= last {
			return nil, errPayload
		}
		last = num
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, errPayload
			}
			b = b[n:]
			switch num {
			case fieldID:
				p.Identity.ID = int64(v)
			case fieldActivated:
				p.Identity.Activated = protowire.DecodeBool(v)
			case fieldActivatedAt:
				t := time.Unix(0, protowire.DecodeZigZag(v)).UTC()
				p.Identity.ActivatedAt = &t
			case fieldExpiresAt:
				p.ExpiresAt = time.Unix(0, protowire.DecodeZigZag(v)).UTC()
				hasExpiry = true
			default:
				return nil, errPayload
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, errPayload
			}
			b = b[n:]
			switch num {
			case fieldUsername:
				p.Identity.Username = v
			case fieldNickname:
				p.Identity.Nickname = v
			case fieldEmail:
				p.Identity.Email = v
			case fieldPasswordHash:
				p.Identity.PasswordHash = v
			default:
				return nil, errPayload
			}
		default:
			return nil, errPayload
		}
	}

	if !hasExpiry {
		return nil, errPayload
	}
	return p, nil
}
