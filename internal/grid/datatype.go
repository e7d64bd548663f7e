package grid

// DataType tags the element type of a grid.
type DataType uint8

const (
	TypeUnknown DataType = iota
	TypeBinary
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeComplex64
	TypeComplex128
)

var dataTypeNames = [...]string{
	TypeUnknown:    "unknown",
	TypeBinary:     "bin",
	TypeUint8:      "uint8",
	TypeUint16:     "uint16",
	TypeUint32:     "uint32",
	TypeUint64:     "uint64",
	TypeInt8:       "int8",
	TypeInt16:      "int16",
	TypeInt32:      "int32",
	TypeInt64:      "int64",
	TypeFloat32:    "float32",
	TypeFloat64:    "float64",
	TypeComplex64:  "complex64",
	TypeComplex128: "complex128",
}

func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return dataTypeNames[TypeUnknown]
}

// IsReal reports whether the type is one of the Real element types.
func (t DataType) IsReal() bool {
	return t >= TypeUint8 && t <= TypeFloat64
}

func dataTypeOf(v any) DataType {
	switch v.(type) {
	case bool:
		return TypeBinary
	case uint8:
		return TypeUint8
	case uint16:
		return TypeUint16
	case uint32:
		return TypeUint32
	case uint64:
		return TypeUint64
	case int8:
		return TypeInt8
	case int16:
		return TypeInt16
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case float32:
		return TypeFloat32
	case float64:
		return TypeFloat64
	case complex64:
		return TypeComplex64
	case complex128:
		return TypeComplex128
	default:
		return TypeUnknown
	}
}
