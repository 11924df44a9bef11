package object

import (
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

// maxMessageSize is the largest message body a version 2 header can hold.
const maxMessageSize = 0xffff

// Encode returns a version 2 object header holding msgs in a single block.
func Encode(msgs []message.Message, cfg binary.Config) ([]byte, error) {
	var body binary.Buffer
	bw := binary.NewWriter(&body, cfg)
	for _, msg := range msgs {
		data, err := message.Encode(msg, cfg)
		if err != nil {
			return nil, err
		}
		if len(data) > maxMessageSize {
			return nil, fmt.Errorf("%s message is %d bytes, limit is %d", msg.Type(), len(data), maxMessageSize)
		}
		bw.WriteUint8(uint8(msg.Type()))
		bw.WriteUint16(uint16(len(data)))
		bw.WriteUint8(0)
		bw.WriteBytes(data)
	}

	size := len(body.Bytes())
	var width uint8
	switch {
	case size > 0xffff:
		width = 2
	case size > 0xff:
		width = 1
	}

	var out binary.Buffer
	w := binary.NewWriter(&out, cfg)
	w.WriteBytes([]byte("OHDR"))
	w.WriteUint8(2)
	w.WriteUint8(width)
	w.WriteUintN(uint64(size), 1<<width)
	w.WriteBytes(body.Bytes())
	w.WriteUint32(binary.Lookup3Checksum(out.Bytes()))
	return out.Bytes(), nil
}

// GroupMessages returns the messages of a new-style group with compact link
// storage.
func GroupMessages(links []*message.Link, attrs []*message.Attribute) []message.Message {
	msgs := make([]message.Message, 0, 2+len(links)+len(attrs))
	msgs = append(msgs, message.NewLinkInfo(), &message.GroupInfo{})
	for _, l := range links {
		msgs = append(msgs, l)
	}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}

// DatasetMessages returns the messages of a dataset with its attributes.
func DatasetMessages(space *message.Dataspace, dt *message.Datatype, layout *message.Layout, attrs ...*message.Attribute) []message.Message {
	msgs := []message.Message{space, dt, layout}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}
