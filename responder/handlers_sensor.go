package responder

import "github.com/jarule/core/rdm"

// allSensors is the SENSOR_VALUE/SENSOR_DEFINITION/RECORD_SENSORS
// sensor-number wildcard, per E1.20: 0xFF addresses every sensor at
// once.
const allSensors = 0xFF

func getSensorDefinition(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 {
		return nil, rdm.NackFormatError, false
	}

	num := req.ParamData[0]
	if int(num) >= len(s.Def.Sensors) {
		return nil, rdm.NackDataOutOfRange, false
	}
	def := s.Def.Sensors[num]

	buf := []byte{num, def.Type, def.Unit, def.Prefix}
	buf = rdm.PushU16(buf, uint16(def.RangeMin))
	buf = rdm.PushU16(buf, uint16(def.RangeMax))
	buf = rdm.PushU16(buf, uint16(def.NormalMin))
	buf = rdm.PushU16(buf, uint16(def.NormalMax))
	buf = append(buf, def.Support)
	buf = append(buf, []byte(def.Description)...)

	return buf, 0, true
}

func sensorReply(num byte, d SensorData) []byte {
	buf := []byte{num}
	buf = rdm.PushU16(buf, uint16(d.Recorded))
	buf = rdm.PushU16(buf, uint16(d.Lowest))
	buf = rdm.PushU16(buf, uint16(d.Highest))
	buf = rdm.PushU16(buf, uint16(d.Recorded))
	return buf
}

func getSensorValue(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 {
		return nil, rdm.NackFormatError, false
	}

	num := req.ParamData[0]
	if int(num) >= len(s.Def.Sensors) {
		return nil, rdm.NackDataOutOfRange, false
	}

	d := s.Sensors[num]
	if d.ShouldNack {
		return nil, d.NackReason, false
	}

	return sensorReply(num, d), 0, true
}

// setSensorValue implements the PID's SET-to-reset semantics: it
// re-arms lowest/highest/recorded tracking for the addressed sensor,
// or for every sensor when num is the 0xFF wildcard, and echoes the
// reset reading.
func setSensorValue(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 {
		return nil, rdm.NackFormatError, false
	}

	num := req.ParamData[0]
	if num == allSensors {
		for i, def := range s.Def.Sensors {
			resetSensor(&s.Sensors[i], def)
		}
		return []byte{allSensors}, 0, true
	}

	if int(num) >= len(s.Def.Sensors) {
		return nil, rdm.NackDataOutOfRange, false
	}

	resetSensor(&s.Sensors[num], s.Def.Sensors[num])
	return sensorReply(num, s.Sensors[num]), 0, true
}

func resetSensor(d *SensorData, def SensorDef) {
	d.Present = false
	d.ShouldNack = false

	if def.Support&SupportsLowestHighest == 0 {
		d.Lowest = SensorValueUnsupported
		d.Highest = SensorValueUnsupported
	} else {
		d.Lowest = 0
		d.Highest = 0
	}
	if def.Support&SupportsRecording == 0 {
		d.Recorded = SensorValueUnsupported
	} else {
		d.Recorded = 0
	}
}

// setRecordSensors implements RECORD_SENSORS (SET only): for a sensor
// that supports recording it marks the sensor present and, if the
// definition supports tracking, extends Lowest/Highest with the value
// already held in Recorded. Recorded itself is not changed.
func setRecordSensors(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 {
		return nil, rdm.NackFormatError, false
	}

	num := req.ParamData[0]
	if num == allSensors {
		for i, def := range s.Def.Sensors {
			recordSensor(&s.Sensors[i], def)
		}
		return nil, 0, true
	}

	if int(num) >= len(s.Def.Sensors) {
		return nil, rdm.NackDataOutOfRange, false
	}

	recordSensor(&s.Sensors[num], s.Def.Sensors[num])
	return nil, 0, true
}

func recordSensor(d *SensorData, def SensorDef) {
	if def.Support&SupportsRecording == 0 {
		return
	}

	d.Present = true
	if def.Support&SupportsLowestHighest != 0 {
		if d.Recorded < d.Lowest || d.Lowest == SensorValueUnsupported {
			d.Lowest = d.Recorded
		}
		if d.Recorded > d.Highest {
			d.Highest = d.Recorded
		}
	}
}
