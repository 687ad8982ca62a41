// Command libmevac builds the C shared library exporting evalpt:
//
//	go build -buildmode=c-shared -o libmevac.so ./cmd/libmevac
//
// Both entry points treat len as the authoritative number of name/value
// pairs, copy the strings they are given for the duration of the call, and
// never retain or free host memory. A failed evaluation returns NaN; set
// MEVAC_ON_ERROR=abort to terminate the process instead.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/zephyrtronium/mevac/internal/shim"
)

//export evalpt
func evalpt(expr *C.char, names **C.char, values *C.double, n C.uint32_t) C.double {
	r, _ := point(expr, names, values, n)
	return C.double(r)
}

//export evalpt_status
func evalpt_status(expr *C.char, names **C.char, values *C.double, n C.uint32_t, status *C.int32_t) C.double {
	r, st := point(expr, names, values, n)
	if status != nil {
		*status = C.int32_t(st)
	}
	return C.double(r)
}

func point(expr *C.char, names **C.char, values *C.double, n C.uint32_t) (float64, shim.Status) {
	k := int(n)
	var (
		vars []string
		vals []float64
	)
	if k > 0 {
		vars = make([]string, k)
		for i, p := range unsafe.Slice(names, k) {
			vars[i] = C.GoString(p)
		}
		vals = make([]float64, k)
		for i, v := range unsafe.Slice(values, k) {
			vals[i] = float64(v)
		}
	}
	return shim.Default().Point(C.GoString(expr), vars, vals)
}

func main() {}
