package rdm

// StartCode is the first byte of every RDM frame on the wire.
const StartCode = 0xCC

// SubStartCode is the second byte of every RDM frame on the wire.
const SubStartCode = 0x01

// HeaderLen is the fixed prefix length of every RDM frame: start code,
// sub-start code, message length, dest UID, src UID, transaction
// number, port-id/response-type, message count, sub-device, command
// class, parameter id, parameter data length.
const HeaderLen = 24

// ChecksumLen is the length, in bytes, of the trailing checksum.
const ChecksumLen = 2

// MaxParamDataLen is the largest parameter data block a handler may
// produce (RDM caps PDL at 231 to keep the frame within 255 bytes of
// command-class payload; see DEVICE_INFO-class replies for the typical
// maximum).
const MaxParamDataLen = 231

// MaxFrameLen is the worst-case RDM frame size: the fixed header, the
// largest parameter data block, and the checksum.
const MaxFrameLen = HeaderLen + MaxParamDataLen + ChecksumLen

// RootDevice is the sub-device value addressing the root device itself.
const RootDevice = 0x0000

// AllSubDevices addresses every sub-device at once (SET only).
const AllSubDevices = 0xFFFF

// CommandClass identifies the kind of RDM message.
type CommandClass uint8

const (
	DiscoveryCommand         CommandClass = 0x10
	DiscoveryCommandResponse CommandClass = 0x11
	GetCommand               CommandClass = 0x20
	GetCommandResponse       CommandClass = 0x21
	SetCommand               CommandClass = 0x30
	SetCommandResponse       CommandClass = 0x31
)

// IsResponse reports whether the command class is one of the *_RESPONSE
// variants.
func (c CommandClass) IsResponse() bool {
	return c == DiscoveryCommandResponse || c == GetCommandResponse || c == SetCommandResponse
}

// ResponseType occupies the port-id field in requests and the
// response-type field in replies.
type ResponseType uint8

const (
	ResponseTypeAck         ResponseType = 0x00
	ResponseTypeAckTimer    ResponseType = 0x01
	ResponseTypeNackReason  ResponseType = 0x02
	ResponseTypeAckOverflow ResponseType = 0x03
)

// PID is an RDM parameter identifier.
type PID uint16

// Parameter identifiers referenced by this module (ANSI E1.20 Table
// A-3/A-5). Only the subset this responder implements is named; an
// unrecognized PID is still representable as a bare PID value.
const (
	PIDDiscUniqueBranch                 PID = 0x0001
	PIDDiscMute                         PID = 0x0002
	PIDDiscUnMute                       PID = 0x0003
	PIDProxiedDevices                   PID = 0x0010
	PIDProxiedDeviceCount               PID = 0x0011
	PIDCommsStatus                      PID = 0x0015
	PIDQueuedMessage                    PID = 0x0020
	PIDStatusMessages                   PID = 0x0030
	PIDStatusIDDescription              PID = 0x0031
	PIDClearStatusID                    PID = 0x0032
	PIDSubDeviceIDStatusReportThreshold PID = 0x0033
	PIDSupportedParameters              PID = 0x0050
	PIDParameterDescription             PID = 0x0051
	PIDDeviceInfo                       PID = 0x0060
	PIDProductDetailIDList              PID = 0x0070
	PIDDeviceModelDescription           PID = 0x0080
	PIDManufacturerLabel                PID = 0x0081
	PIDDeviceLabel                      PID = 0x0082
	PIDFactoryDefaults                  PID = 0x0090
	PIDLanguageCapabilities             PID = 0x00A0
	PIDLanguage                         PID = 0x00B0
	PIDSoftwareVersionLabel             PID = 0x00C0
	PIDBootSoftwareVersionID            PID = 0x00C1
	PIDBootSoftwareVersionLabel         PID = 0x00C2
	PIDDMXPersonality                   PID = 0x00E0
	PIDDMXPersonalityDescription        PID = 0x00E1
	PIDDMXStartAddress                  PID = 0x00F0
	PIDSlotInfo                         PID = 0x0120
	PIDSlotDescription                  PID = 0x0121
	PIDDefaultSlotValue                 PID = 0x0122
	PIDSensorDefinition                 PID = 0x0200
	PIDSensorValue                      PID = 0x0201
	PIDRecordSensors                    PID = 0x0202
	PIDIdentifyDevice                   PID = 0x1000
)

// NackReason is the 16-bit reason code carried in a NACK parameter data
// block (ANSI E1.20 Table A-17).
type NackReason uint16

const (
	NackUnknownPID              NackReason = 0x0000
	NackFormatError             NackReason = 0x0001
	NackHardwareFault           NackReason = 0x0002
	NackProxyReject             NackReason = 0x0003
	NackWriteProtect            NackReason = 0x0004
	NackUnsupportedCommandClass NackReason = 0x0005
	NackDataOutOfRange          NackReason = 0x0006
	NackBufferFull              NackReason = 0x0007
	NackPacketSizeUnsupported   NackReason = 0x0008
	NackSubDeviceOutOfRange     NackReason = 0x0009
	NackProxyBufferFull         NackReason = 0x000A
)

// Header is the parsed 24-byte RDM prefix plus the parameter data that
// follows it. Header never carries the trailing checksum; that is
// computed or verified separately (AppendChecksum, Validate).
type Header struct {
	DestUID              UID
	SrcUID               UID
	TransactionNumber    uint8
	PortIDOrResponseType uint8
	MessageCount         uint8
	SubDevice            uint16
	CommandClass         CommandClass
	ParamID              PID
	ParamData            []byte
}

// MessageLength is the value the wire message-length field must carry
// for this header: the fixed prefix plus the parameter data.
func (h *Header) MessageLength() int {
	return HeaderLen + len(h.ParamData)
}
