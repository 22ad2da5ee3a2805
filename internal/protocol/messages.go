package protocol

import "github.com/muurk/kpowire/internal/wire"

// Messages whose layout is the same in every protocol version.

type Ack struct {
	Header `yaml:",inline"`
}

type Nak struct {
	Header `yaml:",inline"`
	Reason uint8 `yaml:"reason" json:"reason"`
}

type GetHash struct {
	Header `yaml:",inline"`
}

type GetTime struct {
	Header `yaml:",inline"`
}

type GetTimeResponse struct {
	Header    `yaml:",inline"`
	Timestamp uint64 `yaml:"timestamp" json:"timestamp"`
}

type EnablePublish struct {
	Header `yaml:",inline"`
	Enable bool `yaml:"enable" json:"enable"`
}

// Unpublish carries at least one node id.
type Unpublish struct {
	Header `yaml:",inline"`
	IDs    []uint16 `yaml:"ids" json:"ids"`
}

// WriteRecord is one value written to a node.
type WriteRecord struct {
	ID    uint16        `yaml:"id" json:"id"`
	Type  wire.DataType `yaml:"type" json:"type"`
	Value any           `yaml:"value" json:"value"`
}

// Write carries at least one record.
type Write struct {
	Header  `yaml:",inline"`
	Records []WriteRecord `yaml:"records" json:"records"`
}

type Commit struct {
	Header    `yaml:",inline"`
	Timestamp uint64 `yaml:"timestamp" json:"timestamp"`
}

type GetNodeProperties struct {
	Header `yaml:",inline"`
	Node   Address `yaml:"node" json:"node"`
}

type DeleteNode struct {
	Header `yaml:",inline"`
	Node   Address `yaml:"node" json:"node"`
}

type Emergency struct {
	Header    `yaml:",inline"`
	Bitmap    uint32 `yaml:"bitmap" json:"bitmap"`
	Timestamp uint64 `yaml:"timestamp" json:"timestamp"`
}

// CommittedRecord is one timestamped value with its quality code.
type CommittedRecord struct {
	ID        uint16        `yaml:"id" json:"id"`
	Type      wire.DataType `yaml:"type" json:"type"`
	Timestamp uint64        `yaml:"timestamp" json:"timestamp"`
	Quality   uint8         `yaml:"quality" json:"quality"`
	Value     any           `yaml:"value" json:"value"`
}

// CommittedWrite carries at least one record.
type CommittedWrite struct {
	Header  `yaml:",inline"`
	Records []CommittedRecord `yaml:"records" json:"records"`
}

type Cancel struct {
	Header       `yaml:",inline"`
	Transactions []uint16 `yaml:"transactions" json:"transactions"`
}

// ThrottleLimit allows Limit messages per Period milliseconds.
type ThrottleLimit struct {
	Limit  uint16 `yaml:"limit" json:"limit"`
	Period uint32 `yaml:"period" json:"period"`
}

type Throttle struct {
	Header `yaml:",inline"`
	Limits []ThrottleLimit `yaml:"limits" json:"limits"`
}

func (*Ack) Opcode() Opcode               { return OpAck }
func (*Nak) Opcode() Opcode               { return OpNak }
func (*GetHash) Opcode() Opcode           { return OpGetHash }
func (*GetTime) Opcode() Opcode           { return OpGetTime }
func (*GetTimeResponse) Opcode() Opcode   { return OpGetTimeResponse }
func (*EnablePublish) Opcode() Opcode     { return OpEnablePublish }
func (*Unpublish) Opcode() Opcode         { return OpUnpublish }
func (*Write) Opcode() Opcode             { return OpWrite }
func (*Commit) Opcode() Opcode            { return OpCommit }
func (*GetNodeProperties) Opcode() Opcode { return OpGetNodeProperties }
func (*DeleteNode) Opcode() Opcode        { return OpDeleteNode }
func (*Emergency) Opcode() Opcode         { return OpEmergency }
func (*CommittedWrite) Opcode() Opcode    { return OpCommittedWrite }
func (*Cancel) Opcode() Opcode            { return OpCancel }
func (*Throttle) Opcode() Opcode          { return OpThrottle }

// NewSharedMessage returns a zero message for an opcode whose layout is
// shared by every version.
func NewSharedMessage(op Opcode) (Message, bool) {
	switch op {
	case OpAck:
		return &Ack{}, true
	case OpNak:
		return &Nak{}, true
	case OpGetHash:
		return &GetHash{}, true
	case OpGetTime:
		return &GetTime{}, true
	case OpGetTimeResponse:
		return &GetTimeResponse{}, true
	case OpEnablePublish:
		return &EnablePublish{}, true
	case OpUnpublish:
		return &Unpublish{}, true
	case OpWrite:
		return &Write{}, true
	case OpCommit:
		return &Commit{}, true
	case OpGetNodeProperties:
		return &GetNodeProperties{}, true
	case OpDeleteNode:
		return &DeleteNode{}, true
	case OpEmergency:
		return &Emergency{}, true
	case OpCommittedWrite:
		return &CommittedWrite{}, true
	case OpCancel:
		return &Cancel{}, true
	case OpThrottle:
		return &Throttle{}, true
	}
	return nil, false
}
