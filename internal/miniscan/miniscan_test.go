package miniscan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ren-core/ren/internal/corelog"
	"github.com/ren-core/ren/internal/miniscan"
	"github.com/ren-core/ren/interp"
)

func TestScanBlockArithmetic(t *testing.T) {
	syms := interp.New(interp.EngineOptions{Logger: corelog.Discard()}).Symtab()
	arr, err := miniscan.New("1 + 2 * 3", syms).ScanBlock()
	require.NoError(t, err)
	require.Len(t, arr.Cells, 5)
	require.Equal(t, interp.HeartInteger, arr.Cells[0].Heart)
	require.Equal(t, interp.HeartWord, arr.Cells[1].Heart)
	require.Equal(t, interp.HeartInteger, arr.Cells[2].Heart)
	require.Equal(t, interp.HeartWord, arr.Cells[3].Heart)
	require.Equal(t, interp.HeartInteger, arr.Cells[4].Heart)
}

func TestScanBlockSetBlockTarget(t *testing.T) {
	syms := interp.New(interp.EngineOptions{Logger: corelog.Discard()}).Symtab()
	arr, err := miniscan.New("[a b]: pack [10 20]", syms).ScanBlock()
	require.NoError(t, err)
	require.Len(t, arr.Cells, 3)
	require.Equal(t, interp.HeartSetBlock, arr.Cells[0].Heart)
	require.Equal(t, interp.HeartWord, arr.Cells[1].Heart)
	require.Equal(t, interp.HeartBlock, arr.Cells[2].Heart)
}

func TestScanBlockStringsAndComments(t *testing.T) {
	syms := interp.New(interp.EngineOptions{Logger: corelog.Discard()}).Symtab()
	arr, err := miniscan.New(`"hello" ; trailing comment`, syms).ScanBlock()
	require.NoError(t, err)
	require.Len(t, arr.Cells, 1)
	require.Equal(t, interp.HeartText, arr.Cells[0].Heart)
	require.Equal(t, "hello", arr.Cells[0].AsText())
}

func TestScanBlockUnterminatedStringErrors(t *testing.T) {
	syms := interp.New(interp.EngineOptions{Logger: corelog.Discard()}).Symtab()
	_, err := miniscan.New(`"oops`, syms).ScanBlock()
	require.Error(t, err)
}

func TestScanBlockUnterminatedBlockErrors(t *testing.T) {
	syms := interp.New(interp.EngineOptions{Logger: corelog.Discard()}).Symtab()
	_, err := miniscan.New(`[1 2`, syms).ScanBlock()
	require.Error(t, err)
}
