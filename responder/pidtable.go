package responder

import "github.com/jarule/core/rdm"

// DefaultPIDs returns the dispatch table for the PID set every
// responder of this class carries. A concrete responder definition
// built with NewDefinition passes this slice (or an extension of it)
// as its PIDs.
func DefaultPIDs() []PIDDescriptor {
	return []PIDDescriptor{
		{PID: rdm.PIDSupportedParameters, Get: getSupportedParameters},
		{PID: rdm.PIDCommsStatus, Get: getCommsStatus, Set: setCommsStatus},
		{PID: rdm.PIDDeviceInfo, Get: getDeviceInfo},
		{PID: rdm.PIDProductDetailIDList, Get: getProductDetailIDs},
		{PID: rdm.PIDDeviceModelDescription, Get: getDeviceModelDescription},
		{PID: rdm.PIDManufacturerLabel, Get: getManufacturerLabel},
		{PID: rdm.PIDSoftwareVersionLabel, Get: getSoftwareVersionLabel},
		{PID: rdm.PIDBootSoftwareVersionID, Get: getBootSoftwareVersionID},
		{PID: rdm.PIDBootSoftwareVersionLabel, Get: getBootSoftwareVersionLabel},
		{PID: rdm.PIDDeviceLabel, Get: getDeviceLabel, Set: setDeviceLabel},
		{PID: rdm.PIDFactoryDefaults, Get: getFactoryDefaults, Set: setFactoryDefaults},
		{PID: rdm.PIDDMXPersonality, Get: getDMXPersonality, Set: setDMXPersonality},
		{PID: rdm.PIDDMXPersonalityDescription, Get: getDMXPersonalityDescription, GetParamSize: 1},
		{PID: rdm.PIDDMXStartAddress, Get: getDMXStartAddress, Set: setDMXStartAddress},
		{PID: rdm.PIDSlotInfo, Get: getSlotInfo},
		{PID: rdm.PIDSlotDescription, Get: getSlotDescription, GetParamSize: 2},
		{PID: rdm.PIDDefaultSlotValue, Get: getDefaultSlotValue},
		{PID: rdm.PIDSensorDefinition, Get: getSensorDefinition, GetParamSize: 1},
		{PID: rdm.PIDSensorValue, Get: getSensorValue, Set: setSensorValue, GetParamSize: 1},
		{PID: rdm.PIDRecordSensors, Set: setRecordSensors},
		{PID: rdm.PIDIdentifyDevice, Get: getIdentifyDevice, Set: setIdentifyDevice},
	}
}
