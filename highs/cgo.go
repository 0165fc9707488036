//go:build (linux || darwin) && (amd64 || arm64)

// Package highs integrates the HiGHS linear optimization solver as the
// backend of a github.com/gomilp/milp model.
//
// The Model type in this package keeps a live HiGHS instance synchronized
// with an incremental milp.Store: bound and coefficient edits become direct
// HiGHS calls, structural deletions become masked bulk deletes followed by an
// index-map rebuild, and batched edits are replayed as a command list at
// EndUpdate. Solver is the low-level cgo wrapper over the HiGHS C API.
//
// Building this package requires the HiGHS library and headers to be
// installed on the system (for example via `apt install libhighs-dev` or a
// source build). Use CGO_CFLAGS/CGO_LDFLAGS to point at a non-standard
// location.
//
//	m, err := highs.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//	x, _ := m.AddVariable("x", 0, 10, milp.Continuous)
//	m.SetObjective(milp.Term(x, 1), milp.Minimize)
//	sol, err := m.Solve(milp.WithOutputLevel(0))
package highs

/*
#cgo CFLAGS: -I/usr/include/highs -I/usr/local/include/highs
#cgo LDFLAGS: -lhighs

#include <stdlib.h>
#include <stdint.h>
#include "highs_c_api.h"
*/
import "C"
import (
	"runtime"
	"unsafe"
)

// HighsInt is the integer type used by HiGHS (matches C's HighsInt).
type HighsInt = C.HighsInt

func (v VariableType) toC() C.HighsInt {
	switch v {
	case Continuous:
		return C.kHighsVarTypeContinuous
	case Integer:
		return C.kHighsVarTypeInteger
	case SemiContinuous:
		return C.kHighsVarTypeSemiContinuous
	case SemiInteger:
		return C.kHighsVarTypeSemiInteger
	case ImplicitInteger:
		return C.kHighsVarTypeImplicitInteger
	default:
		return C.kHighsVarTypeContinuous
	}
}

func modelStatusFromC(status C.HighsInt) ModelStatus {
	switch status {
	case C.kHighsModelStatusNotset:
		return ModelStatusNotSet
	case C.kHighsModelStatusLoadError:
		return ModelStatusLoadError
	case C.kHighsModelStatusModelError:
		return ModelStatusModelError
	case C.kHighsModelStatusPresolveError:
		return ModelStatusPresolveError
	case C.kHighsModelStatusSolveError:
		return ModelStatusSolveError
	case C.kHighsModelStatusPostsolveError:
		return ModelStatusPostsolveError
	case C.kHighsModelStatusModelEmpty:
		return ModelStatusModelEmpty
	case C.kHighsModelStatusOptimal:
		return ModelStatusOptimal
	case C.kHighsModelStatusInfeasible:
		return ModelStatusInfeasible
	case C.kHighsModelStatusUnboundedOrInfeasible:
		return ModelStatusUnboundedOrInfeasible
	case C.kHighsModelStatusUnbounded:
		return ModelStatusUnbounded
	case C.kHighsModelStatusObjectiveBound:
		return ModelStatusObjectiveBound
	case C.kHighsModelStatusObjectiveTarget:
		return ModelStatusObjectiveTarget
	case C.kHighsModelStatusTimeLimit:
		return ModelStatusTimeLimit
	case C.kHighsModelStatusIterationLimit:
		return ModelStatusIterationLimit
	case C.kHighsModelStatusSolutionLimit:
		return ModelStatusSolutionLimit
	case C.kHighsModelStatusInterrupt:
		return ModelStatusInterrupt
	default:
		return ModelStatusUnknown
	}
}

// New creates a Model backed by a fresh HiGHS instance. The model must be
// closed with Close when no longer needed; the native solver memory is not
// reclaimed by the garbage collector.
func New() (*Model, error) {
	solver, err := NewSolver()
	if err != nil {
		return nil, err
	}
	return newModel(solver), nil
}

// Solver provides low-level access to one HiGHS instance. It exposes exactly
// the backend boundary the synchronization engine needs: a column-wise bulk
// load, per-index mutation calls, masked bulk deletes, solve and result
// retrieval, option setting and model export.
//
// Always call Close when done to release the native resources:
//
//	solver, _ := NewSolver()
//	defer solver.Close()
type Solver struct {
	ptr unsafe.Pointer
}

// NewSolver creates a new HiGHS solver instance.
func NewSolver() (*Solver, error) {
	ptr := C.Highs_create()
	if ptr == nil {
		return nil, newErrorMsg("NewSolver", "failed to create HiGHS instance")
	}

	s := &Solver{ptr: ptr}
	runtime.SetFinalizer(s, (*Solver).Close)
	return s, nil
}

// Close releases the resources held by the solver.
// It is safe to call Close multiple times.
func (s *Solver) Close() {
	if s.ptr != nil {
		C.Highs_destroy(s.ptr)
		s.ptr = nil
	}
}

// Infinity returns the value used by HiGHS to represent infinity.
func (s *Solver) Infinity() float64 {
	return float64(C.Highs_getInfinity(s.ptr))
}

// NumCol returns the number of columns (variables) in the model.
func (s *Solver) NumCol() int {
	return int(C.Highs_getNumCol(s.ptr))
}

// NumRow returns the number of rows (constraints) in the model.
func (s *Solver) NumRow() int {
	return int(C.Highs_getNumRow(s.ptr))
}

// NumNonzero returns the number of non-zero entries in the constraint matrix.
func (s *Solver) NumNonzero() int {
	return int(C.Highs_getNumNz(s.ptr))
}

// SetBoolOption sets a boolean option.
func (s *Solver) SetBoolOption(name string, value bool) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var cVal C.HighsInt
	if value {
		cVal = 1
	}
	status := Status(C.Highs_setBoolOptionValue(s.ptr, cName, cVal))
	return newError("SetBoolOption", status)
}

// SetIntOption sets an integer option.
func (s *Solver) SetIntOption(name string, value int) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	status := Status(C.Highs_setIntOptionValue(s.ptr, cName, C.HighsInt(value)))
	return newError("SetIntOption", status)
}

// SetFloatOption sets a floating-point option.
func (s *Solver) SetFloatOption(name string, value float64) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	status := Status(C.Highs_setDoubleOptionValue(s.ptr, cName, C.double(value)))
	return newError("SetFloatOption", status)
}

// SetStringOption sets a string option.
func (s *Solver) SetStringOption(name, value string) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cVal := C.CString(value)
	defer C.free(unsafe.Pointer(cVal))

	status := Status(C.Highs_setStringOptionValue(s.ptr, cName, cVal))
	return newError("SetStringOption", status)
}

// ChangeObjectiveSense sets whether to maximize (true) or minimize (false).
func (s *Solver) ChangeObjectiveSense(maximize bool) error {
	sense := C.kHighsObjSenseMinimize
	if maximize {
		sense = C.kHighsObjSenseMaximize
	}
	status := Status(C.Highs_changeObjectiveSense(s.ptr, C.HighsInt(sense)))
	return newError("ChangeObjectiveSense", status)
}

// ChangeObjectiveOffset sets the constant offset of the objective function.
func (s *Solver) ChangeObjectiveOffset(offset float64) error {
	status := Status(C.Highs_changeObjectiveOffset(s.ptr, C.double(offset)))
	return newError("ChangeObjectiveOffset", status)
}

// AddCol appends one column with the given cost, bounds and sparse
// coefficients into existing rows.
func (s *Solver) AddCol(cost, lower, upper float64, index []int, value []float64) error {
	if len(index) != len(value) {
		return newErrorMsg("AddCol", "index and value must have same length")
	}

	var pIndex *C.HighsInt
	var pValue *C.double
	if len(index) > 0 {
		cIndex := make([]C.HighsInt, len(index))
		for i, v := range index {
			cIndex[i] = C.HighsInt(v)
		}
		pIndex = &cIndex[0]
		pValue = (*C.double)(&value[0])
	}

	status := Status(C.Highs_addCol(s.ptr,
		C.double(cost), C.double(lower), C.double(upper),
		C.HighsInt(len(index)), pIndex, pValue))
	return newError("AddCol", status)
}

// AddRow appends one row with the given bounds and sparse coefficients.
func (s *Solver) AddRow(lower, upper float64, index []int, value []float64) error {
	if len(index) != len(value) {
		return newErrorMsg("AddRow", "index and value must have same length")
	}

	var pIndex *C.HighsInt
	var pValue *C.double
	if len(index) > 0 {
		cIndex := make([]C.HighsInt, len(index))
		for i, v := range index {
			cIndex[i] = C.HighsInt(v)
		}
		pIndex = &cIndex[0]
		pValue = (*C.double)(&value[0])
	}

	status := Status(C.Highs_addRow(s.ptr,
		C.double(lower), C.double(upper),
		C.HighsInt(len(index)), pIndex, pValue))
	return newError("AddRow", status)
}

// ChangeColBounds sets the bounds of a column.
func (s *Solver) ChangeColBounds(col int, lower, upper float64) error {
	status := Status(C.Highs_changeColBounds(s.ptr,
		C.HighsInt(col), C.double(lower), C.double(upper)))
	return newError("ChangeColBounds", status)
}

// ChangeRowBounds sets the bounds of a row.
func (s *Solver) ChangeRowBounds(row int, lower, upper float64) error {
	status := Status(C.Highs_changeRowBounds(s.ptr,
		C.HighsInt(row), C.double(lower), C.double(upper)))
	return newError("ChangeRowBounds", status)
}

// ChangeColCost sets the objective coefficient of a column.
func (s *Solver) ChangeColCost(col int, cost float64) error {
	status := Status(C.Highs_changeColCost(s.ptr, C.HighsInt(col), C.double(cost)))
	return newError("ChangeColCost", status)
}

// ChangeColIntegrality sets the variable type of a column.
func (s *Solver) ChangeColIntegrality(col int, varType VariableType) error {
	status := Status(C.Highs_changeColIntegrality(s.ptr,
		C.HighsInt(col), varType.toC()))
	return newError("ChangeColIntegrality", status)
}

// ChangeCoeff sets a single cell of the constraint matrix.
func (s *Solver) ChangeCoeff(row, col int, value float64) error {
	status := Status(C.Highs_changeCoeff(s.ptr,
		C.HighsInt(row), C.HighsInt(col), C.double(value)))
	return newError("ChangeCoeff", status)
}

// DeleteColsByMask deletes every column whose mask entry is true. HiGHS
// compacts the surviving column indices to a contiguous range starting at 0.
func (s *Solver) DeleteColsByMask(mask []bool) error {
	if len(mask) == 0 {
		return nil
	}
	cMask := make([]C.HighsInt, len(mask))
	for i, del := range mask {
		if del {
			cMask[i] = 1
		}
	}
	status := Status(C.Highs_deleteColsByMask(s.ptr, &cMask[0]))
	return newError("DeleteColsByMask", status)
}

// DeleteRowsByMask deletes every row whose mask entry is true, compacting the
// surviving row indices.
func (s *Solver) DeleteRowsByMask(mask []bool) error {
	if len(mask) == 0 {
		return nil
	}
	cMask := make([]C.HighsInt, len(mask))
	for i, del := range mask {
		if del {
			cMask[i] = 1
		}
	}
	status := Status(C.Highs_deleteRowsByMask(s.ptr, &cMask[0]))
	return newError("DeleteRowsByMask", status)
}

// PassModel loads a complete model in one call. The constraint matrix is
// given in compressed sparse column format: aStart holds the start offset of
// each column plus a trailing total, aIndex the row indices and aValue the
// coefficients. integrality may be nil for a pure LP.
func (s *Solver) PassModel(
	numCol, numRow int,
	colCost, colLower, colUpper []float64,
	rowLower, rowUpper []float64,
	aStart, aIndex []int,
	aValue []float64,
	integrality []VariableType,
	maximize bool,
	offset float64,
) error {
	sense := C.kHighsObjSenseMinimize
	if maximize {
		sense = C.kHighsObjSenseMaximize
	}

	cAStart := make([]C.HighsInt, len(aStart))
	for i, v := range aStart {
		cAStart[i] = C.HighsInt(v)
	}
	cAIndex := make([]C.HighsInt, len(aIndex))
	for i, v := range aIndex {
		cAIndex[i] = C.HighsInt(v)
	}

	var pIntegrality *C.HighsInt
	var cIntegrality []C.HighsInt
	if len(integrality) > 0 {
		cIntegrality = make([]C.HighsInt, len(integrality))
		for i, vt := range integrality {
			cIntegrality[i] = vt.toC()
		}
		pIntegrality = &cIntegrality[0]
	}

	var pColCost, pColLower, pColUpper *C.double
	var pRowLower, pRowUpper *C.double
	var pAStart, pAIndex *C.HighsInt
	var pAValue *C.double

	if len(colCost) > 0 {
		pColCost = (*C.double)(&colCost[0])
	}
	if len(colLower) > 0 {
		pColLower = (*C.double)(&colLower[0])
	}
	if len(colUpper) > 0 {
		pColUpper = (*C.double)(&colUpper[0])
	}
	if len(rowLower) > 0 {
		pRowLower = (*C.double)(&rowLower[0])
	}
	if len(rowUpper) > 0 {
		pRowUpper = (*C.double)(&rowUpper[0])
	}
	if len(cAStart) > 0 {
		pAStart = &cAStart[0]
	}
	if len(cAIndex) > 0 {
		pAIndex = &cAIndex[0]
	}
	if len(aValue) > 0 {
		pAValue = (*C.double)(&aValue[0])
	}

	status := Status(C.Highs_passModel(s.ptr,
		C.HighsInt(numCol), C.HighsInt(numRow),
		C.HighsInt(len(aValue)), 0, // num_nz, q_num_nz
		C.kHighsMatrixFormatColwise, C.kHighsHessianFormatTriangular,
		C.HighsInt(sense), C.double(offset),
		pColCost, pColLower, pColUpper,
		pRowLower, pRowUpper,
		pAStart, pAIndex, pAValue,
		nil, nil, nil, // Hessian pointers
		pIntegrality))
	return newError("PassModel", status)
}

// SetSolution hands a primal starting point to HiGHS, used as a warm start
// for the next Run.
func (s *Solver) SetSolution(colValue []float64) error {
	if len(colValue) == 0 {
		return nil
	}
	status := Status(C.Highs_setSolution(s.ptr,
		(*C.double)(&colValue[0]), nil, nil, nil))
	return newError("SetSolution", status)
}

// Run solves the current model and returns the call status. Use ModelStatus
// and PrimalDualSolution to inspect the outcome.
func (s *Solver) Run() Status {
	return Status(C.Highs_run(s.ptr))
}

// ModelStatus returns the model status after the last Run.
func (s *Solver) ModelStatus() ModelStatus {
	return modelStatusFromC(C.Highs_getModelStatus(s.ptr))
}

// PrimalDualSolution returns the primal and dual vectors of the last solve.
func (s *Solver) PrimalDualSolution() (colValue, colDual, rowValue, rowDual []float64, err error) {
	numCol := s.NumCol()
	numRow := s.NumRow()

	colValue = make([]float64, numCol)
	colDual = make([]float64, numCol)
	rowValue = make([]float64, numRow)
	rowDual = make([]float64, numRow)

	var pColValue, pColDual, pRowValue, pRowDual *C.double
	if numCol > 0 {
		pColValue = (*C.double)(&colValue[0])
		pColDual = (*C.double)(&colDual[0])
	}
	if numRow > 0 {
		pRowValue = (*C.double)(&rowValue[0])
		pRowDual = (*C.double)(&rowDual[0])
	}

	status := Status(C.Highs_getSolution(s.ptr, pColValue, pColDual, pRowValue, pRowDual))
	if err := newError("PrimalDualSolution", status); err != nil {
		return nil, nil, nil, nil, err
	}
	return colValue, colDual, rowValue, rowDual, nil
}

// GetInt64Info returns a 64-bit integer info value.
func (s *Solver) GetInt64Info(name string) (int64, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var val C.int64_t
	status := Status(C.Highs_getInt64InfoValue(s.ptr, cName, &val))
	if err := newError("GetInt64Info", status); err != nil {
		return 0, err
	}
	return int64(val), nil
}

// GetFloatInfo returns a floating-point info value.
func (s *Solver) GetFloatInfo(name string) (float64, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var val C.double
	status := Status(C.Highs_getDoubleInfoValue(s.ptr, cName, &val))
	if err := newError("GetFloatInfo", status); err != nil {
		return 0, err
	}
	return float64(val), nil
}

// WriteModel writes the model to a file. HiGHS chooses the format (LP or
// MPS) from the file extension.
func (s *Solver) WriteModel(filename string) error {
	cFilename := C.CString(filename)
	defer C.free(unsafe.Pointer(cFilename))

	status := Status(C.Highs_writeModel(s.ptr, cFilename))
	return newError("WriteModel", status)
}
