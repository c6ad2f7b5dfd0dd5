package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslc/src/frontend"
	"vslc/src/ir"
)

func mustParse(t *testing.T, src string) *ir.Node {
	t.Helper()
	ast, err := frontend.Parse(src)
	require.NoError(t, err)
	return ast
}

func TestAnalyzeValidProgram(t *testing.T) {
	ast := mustParse(t, `
		int x = 1;
		int y = x + 1;
		if (y > x) {
			int z = y - x;
		}
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	assert.NoError(t, err)
}

func TestAnalyzeUndeclaredVariable(t *testing.T) {
	ast := mustParse(t, `int x = y + 1;`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared")
}

func TestAnalyzeRedeclarationSameScope(t *testing.T) {
	ast := mustParse(t, `
		int x = 1;
		int x = 2;
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestAnalyzeShadowingWarnsNotFails(t *testing.T) {
	ast := mustParse(t, `
		int x = 1;
		if (x == 1) {
			int x = 2;
		}
	`)
	symtab, err := ir.NewAnalyzer().Analyze(ast)
	require.NoError(t, err)
	found := false
	for _, w := range symtab.Warnings {
		if w != "" {
			found = true
		}
	}
	assert.True(t, found, "expected a shadowing warning")
}

func TestAnalyzeUsedBeforeInitialized(t *testing.T) {
	ast := mustParse(t, `
		int x;
		int y = x + 1;
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "used before initialization")
}

func TestAnalyzeSelfAssignmentAfterInitAllowed(t *testing.T) {
	ast := mustParse(t, `
		int x = 0;
		x = x + 1;
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	assert.NoError(t, err)
}

func TestAnalyzeConstReassignmentFails(t *testing.T) {
	ast := mustParse(t, `
		const int x = 1;
		x = 2;
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot modify constant")
}

func TestAnalyzeInvalidConditionType(t *testing.T) {
	ast := mustParse(t, `
		int x = 1;
		if (x) {
			int y = 1;
		}
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 'bool'")
}

func TestAnalyzeStringConcatenation(t *testing.T) {
	ast := mustParse(t, `string s = "a" + "b";`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	assert.NoError(t, err)
}

func TestAnalyzeInvalidConcatenation(t *testing.T) {
	ast := mustParse(t, `string s = "a" + 1;`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concatenation")
}

func TestAnalyzeFunctionCallArity(t *testing.T) {
	ast := mustParse(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r = add(1, 2);
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	assert.NoError(t, err)
}

func TestAnalyzeFunctionCallArityMismatch(t *testing.T) {
	ast := mustParse(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r = add(1);
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 argument")
}

func TestAnalyzeUnusedVariableWarns(t *testing.T) {
	ast := mustParse(t, `int x;`)
	symtab, err := ir.NewAnalyzer().Analyze(ast)
	require.NoError(t, err)
	require.Len(t, symtab.Warnings, 1)
	assert.Contains(t, symtab.Warnings[0], "never used")
}

func TestAnalyzeValidCast(t *testing.T) {
	ast := mustParse(t, `
		int x = 1;
		float y = float(x);
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	assert.NoError(t, err)
}

func TestAnalyzeInvalidCast(t *testing.T) {
	ast := mustParse(t, `
		bool b = true;
		char c = char(b);
	`)
	_, err := ir.NewAnalyzer().Analyze(ast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cast")
}
