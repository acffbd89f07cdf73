package modbus

// Function is the name of a Modbus function code.
type Function string

const (
	ReadCoils              Function = "ReadCoils"
	ReadDiscreteInputs     Function = "ReadDiscreteInputs"
	ReadHoldingRegisters   Function = "ReadHoldingRegisters"
	ReadInputRegisters     Function = "ReadInputRegisters"
	WriteSingleCoil        Function = "WriteSingleCoil"
	WriteSingleRegister    Function = "WriteSingleRegister"
	WriteMultipleCoils     Function = "WriteMultipleCoils"
	WriteMultipleRegisters Function = "WriteMultipleRegisters"
	Exception              Function = "Exception"
	Unknown                Function = "Unknown"
)

// exceptionBit is set on the function code of an error response.
const exceptionBit = 0x80

var functions = map[uint8]Function{
	0x01: ReadCoils,
	0x02: ReadDiscreteInputs,
	0x03: ReadHoldingRegisters,
	0x04: ReadInputRegisters,
	0x05: WriteSingleCoil,
	0x06: WriteSingleRegister,
	0x0F: WriteMultipleCoils,
	0x10: WriteMultipleRegisters,
}

func FunctionFor(code uint8) Function {
	if code&exceptionBit != 0 {
		return Exception
	}

	if f, ok := functions[code]; ok {
		return f
	}

	return Unknown
}
