//go:build rp2040

package main

import "machine"

// InitUSB configures the USB CDC console (machine.Serial)
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// USBAvailable returns the number of buffered console bytes
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single console byte
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// USBWriteBytes writes to the console
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}
