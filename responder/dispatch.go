package responder

import (
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/transceiver"
)

// Dispatch implements transceiver.Dispatcher: it parses buf[:reqLen]
// as an already-validated RDM frame (the engine only calls a Dispatcher
// once rdm.Validate has succeeded), resolves the addressed device, and
// either answers a discovery command specially or walks the PID
// dispatch table.
func (d *Device) Dispatch(buf []byte, reqLen int) int {
	req, result := rdm.Validate(buf, reqLen)
	if result != rdm.ResultOK {
		return transceiver.NoResponse
	}

	target := d.resolve(req.SubDevice)
	if target == nil {
		return transceiver.NoResponse
	}

	if target.IsSub && rootOnlyPIDs[req.ParamID] {
		return transceiver.NoResponse
	}

	if req.CommandClass == rdm.DiscoveryCommand {
		return d.dispatchDiscovery(buf, target, req)
	}

	desc := target.Def.find(req.ParamID)

	switch req.CommandClass {
	case rdm.GetCommand:
		return d.dispatchGet(buf, target, req, desc)
	case rdm.SetCommand:
		return d.dispatchSet(buf, target, req, desc)
	default:
		return transceiver.NoResponse
	}
}

func (d *Device) dispatchDiscovery(buf []byte, target *State, req *rdm.Header) int {
	switch req.ParamID {
	case rdm.PIDDiscUniqueBranch:
		return handleDUB(buf, target, req.ParamData)
	case rdm.PIDDiscMute:
		return d.handleMute(buf, target, req, true)
	case rdm.PIDDiscUnMute:
		return d.handleMute(buf, target, req, false)
	default:
		return transceiver.NoResponse
	}
}

func (d *Device) dispatchGet(buf []byte, target *State, req *rdm.Header, desc *PIDDescriptor) int {
	if req.DestUID.IsBroadcast() {
		return transceiver.NoResponse
	}

	if desc == nil {
		return d.nack(buf, target, req, rdm.NackUnknownPID)
	}
	if desc.Get == nil {
		return d.nack(buf, target, req, rdm.NackUnsupportedCommandClass)
	}
	if len(req.ParamData) != desc.GetParamSize {
		return d.nack(buf, target, req, rdm.NackFormatError)
	}

	data, nack, ok := desc.Get(target, req)
	if !ok {
		return d.nack(buf, target, req, nack)
	}
	return d.ack(buf, target, req, data)
}

func (d *Device) dispatchSet(buf []byte, target *State, req *rdm.Header, desc *PIDDescriptor) int {
	if desc == nil {
		return d.nack(buf, target, req, rdm.NackUnknownPID)
	}
	if desc.Set == nil {
		return d.nack(buf, target, req, rdm.NackUnsupportedCommandClass)
	}

	data, nack, ok := desc.Set(target, req)
	if !ok {
		return d.nack(buf, target, req, nack)
	}
	return d.ack(buf, target, req, data)
}

// replyCommandClass maps a request's command class to its response
// counterpart.
func replyCommandClass(req rdm.CommandClass) rdm.CommandClass {
	switch req {
	case rdm.DiscoveryCommand:
		return rdm.DiscoveryCommandResponse
	case rdm.SetCommand:
		return rdm.SetCommandResponse
	default:
		return rdm.GetCommandResponse
	}
}

// buildReply assembles and serializes a reply header, writing it into
// buf and returning its length. Destination becomes the request's
// source, source becomes the responder's own UID, and the transaction
// number and sub-device are echoed.
func buildReply(buf []byte, target *State, req *rdm.Header, responseType rdm.ResponseType, paramData []byte) int {
	h := &rdm.Header{
		DestUID:              req.SrcUID,
		SrcUID:               target.UID,
		TransactionNumber:    req.TransactionNumber,
		PortIDOrResponseType: uint8(responseType),
		MessageCount:         target.QueuedMessageCount,
		SubDevice:            req.SubDevice,
		CommandClass:         replyCommandClass(req.CommandClass),
		ParamID:              req.ParamID,
		ParamData:            paramData,
	}

	out := rdm.Serialize(h)
	n := copy(buf, out)
	return n
}

func (d *Device) ack(buf []byte, target *State, req *rdm.Header, data []byte) int {
	return buildReply(buf, target, req, rdm.ResponseTypeAck, data)
}

func (d *Device) nack(buf []byte, target *State, req *rdm.Header, reason rdm.NackReason) int {
	data := rdm.PushU16(nil, uint16(reason))
	return buildReply(buf, target, req, rdm.ResponseTypeNackReason, data)
}
