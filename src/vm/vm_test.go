package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslc/src/vm"
)

func run(t *testing.T, asm string) *vm.VM {
	t.Helper()
	m := vm.New()
	require.NoError(t, m.Load(asm))
	require.NoError(t, m.Run())
	return m
}

func TestArithmetic(t *testing.T) {
	m := run(t, "LOAD 2\nADD 3\nSTORE x")
	v, ok := m.Memory()["x"]
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestStoreDoesNotPopStack(t *testing.T) {
	m := run(t, "LOAD 2\nADD 3\nSTORE x")
	top, ok := m.FinalTop()
	require.True(t, ok)
	assert.Equal(t, 5, top, "STORE must not pop the operand stack")
}

func TestDivisionByZero(t *testing.T) {
	m := vm.New()
	require.NoError(t, m.Load("LOAD 1\nDIV 0\nSTORE x"))
	err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestLabelFormsAreEquivalent(t *testing.T) {
	m1 := run(t, "LOAD 1\nGOTO skip\nLOAD 99\nLABEL skip:\nSTORE x")
	m2 := run(t, "LOAD 1\nGOTO skip\nLOAD 99\nskip: STORE x")
	assert.Equal(t, m1.Memory()["x"], m2.Memory()["x"])
}

func TestIfFalseBranch(t *testing.T) {
	m := run(t, "IF_FALSE false GOTO skip\nLOAD 1\nSTORE x\nskip: LOAD 2\nSTORE y")
	_, ok := m.Memory()["x"]
	assert.False(t, ok, "fall-through instructions must be skipped when condition is false")
	y, ok := m.Memory()["y"]
	require.True(t, ok)
	assert.Equal(t, 2, y)
}

func TestUninitializedVariableRead(t *testing.T) {
	m := vm.New()
	require.NoError(t, m.Load("LOAD x\nSTORE y"))
	err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uninitialized")
}

func TestCastIntToFloat(t *testing.T) {
	m := run(t, "LOAD 3\nCAST float\nSTORE x")
	assert.Equal(t, 3.0, m.Memory()["x"])
}

func TestCallStubDiscardsParamsAndPushesPlaceholder(t *testing.T) {
	m := run(t, "LOAD 1\nPARAM 1\nLOAD 2\nPARAM 2\nCALL add, 2\nSTORE result")
	v, ok := m.Memory()["result"]
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestMissingLabelFailsAtLoad(t *testing.T) {
	m := vm.New()
	err := m.Load("GOTO nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing label")
}

// Per the loader's literal-classification rule, LOAD only special-cases
// TRUE/FALSE and decimal numbers; a quoted string operand is treated as a
// deferred variable lookup rather than a literal push. String/char values
// therefore never reach the stack as literals in this VM.
func TestStringOperandIsTreatedAsVariableLookup(t *testing.T) {
	m := vm.New()
	require.NoError(t, m.Load(`LOAD "foo"
STORE s`))
	err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uninitialized")
}

func TestStringConcatenationOfMemoryValues(t *testing.T) {
	m := vm.New()
	require.NoError(t, m.Load("LOAD a\nADD b\nSTORE s"))
	m.Memory()["a"] = "foo"
	m.Memory()["b"] = "bar"
	require.NoError(t, m.Run())
	assert.Equal(t, "foobar", m.Memory()["s"])
}
