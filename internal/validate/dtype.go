package validate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type cellClass int

const (
	classBool cellClass = iota
	classString
	classSigned
	classUnsigned
	classFloat
	classComplex
	classTime
	classDuration
	classOther
)

func classify(v any) cellClass {
	switch v.(type) {
	case bool:
		return classBool
	case string:
		return classString
	case int, int8, int16, int32, int64:
		return classSigned
	case uint, uint8, uint16, uint32, uint64:
		return classUnsigned
	case float32, float64, decimal.Decimal:
		return classFloat
	case complex64, complex128:
		return classComplex
	case time.Time:
		return classTime
	case time.Duration:
		return classDuration
	}
	return classOther
}

// dtypeAccepts maps each dtype name to the cell classes a column may hold.
var dtypeAccepts = map[string][]cellClass{
	"bool":           {classBool},
	"string":         {classString},
	"str":            {classString},
	"numeric":        {classSigned, classUnsigned, classFloat, classComplex},
	"float":          {classFloat},
	"complex":        {classComplex},
	"int":            {classSigned, classUnsigned},
	"signed_int":     {classSigned},
	"signed-int":     {classSigned},
	"signed int":     {classSigned},
	"signedint":      {classSigned},
	"sint":           {classSigned},
	"unsigned_int":   {classUnsigned},
	"unsigned-int":   {classUnsigned},
	"unsigned int":   {classUnsigned},
	"unsignedint":    {classUnsigned},
	"uint":           {classUnsigned},
	"datetime":       {classTime},
	"datetime64":     {classTime},
	"datetime64_ns":  {classTime},
	"datetime64tz":   {classTime},
	"datetime64_tz":  {classTime},
	"timedelta64":    {classDuration},
	"timedelta64_ns": {classDuration},
}

// CheckDtype reports whether every non-null cell of col has the runtime
// type named by dtype. A column with no non-null cells matches any dtype.
// "object" matches text and mixed-type columns.
func CheckDtype(col []any, dtype string) (bool, error) {
	if dtype == "object" {
		return isObject(col), nil
	}
	if dtype == "int64" {
		for _, v := range col {
			switch v.(type) {
			case nil, int64, int:
			default:
				return false, nil
			}
		}
		return true, nil
	}
	accepts, ok := dtypeAccepts[dtype]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedDtype, dtype)
	}
	for _, v := range col {
		if v == nil {
			continue
		}
		if !hasClass(accepts, classify(v)) {
			return false, nil
		}
	}
	return true, nil
}

func hasClass(set []cellClass, c cellClass) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func isObject(col []any) bool {
	first := cellClass(-1)
	for _, v := range col {
		if v == nil {
			continue
		}
		c := classify(v)
		if c == classString || c == classOther {
			return true
		}
		if first >= 0 && c != first {
			return true
		}
		first = c
	}
	return first < 0
}

// DtypeName describes the cells of col for log messages.
func DtypeName(col []any) string {
	first := cellClass(-1)
	for _, v := range col {
		if v == nil {
			continue
		}
		c := classify(v)
		if first >= 0 && c != first {
			return "object"
		}
		first = c
	}
	switch first {
	case classBool:
		return "bool"
	case classString:
		return "string"
	case classSigned:
		return "int64"
	case classUnsigned:
		return "uint64"
	case classFloat:
		return "float"
	case classComplex:
		return "complex"
	case classTime:
		return "datetime"
	case classDuration:
		return "timedelta64"
	case -1:
		return "empty"
	}
	return "object"
}
