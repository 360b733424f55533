package ndimage

// DataType tags the storage type of an Image.
type DataType uint8

// Supported storage types.
const (
	Invalid DataType = iota
	Binary
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Complex64
	Complex128
)

var dataTypeNames = [...]string{
	Invalid:    "invalid",
	Binary:     "bin",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Int8:       "sint8",
	Int16:      "sint16",
	Int32:      "sint32",
	Int64:      "sint64",
	Float32:    "sfloat",
	Float64:    "dfloat",
	Complex64:  "scomplex",
	Complex128: "dcomplex",
}

func (dt DataType) String() string {
	if int(dt) < len(dataTypeNames) {
		return dataTypeNames[dt]
	}
	return "invalid"
}

// IsReal reports whether dt is an integer or floating-point type.
func (dt DataType) IsReal() bool {
	return dt >= Uint8 && dt <= Float64
}

// IsComplex reports whether dt is a complex type.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}

func dataTypeOf(data any) DataType {
	switch data.(type) {
	case []bool:
		return Binary
	case []uint8:
		return Uint8
	case []uint16:
		return Uint16
	case []uint32:
		return Uint32
	case []uint64:
		return Uint64
	case []int8:
		return Int8
	case []int16:
		return Int16
	case []int32:
		return Int32
	case []int64:
		return Int64
	case []float32:
		return Float32
	case []float64:
		return Float64
	case []complex64:
		return Complex64
	case []complex128:
		return Complex128
	}
	return Invalid
}
