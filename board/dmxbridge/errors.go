//go:build tamago && arm

package dmxbridge

import "errors"

var errSelfTestDirection = errors.New("dmxbridge: direction GPIO did not read back as driven")
