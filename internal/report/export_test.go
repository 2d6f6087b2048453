package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []Row {
	return []Row{
		{Date: "2026-04-01 09:30", Customer: "Jordan", Items: "alpha x2, beta x1", Total: 2500},
		{Date: "2026-04-02 14:00", Customer: "Unknown", Items: "alpha x1", Total: 1000},
	}
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(sampleRows(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Date", "Customer", "Items", "Total"}, rows[0])
	require.Equal(t, "Jordan", rows[1][1])
	require.Equal(t, "alpha x2, beta x1", rows[1][2])
	require.Equal(t, "2500", rows[1][3])
	require.Equal(t, "Unknown", rows[2][1])
}

func TestWritePDF_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(sampleRows(), "Sales Report", &buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output must be a PDF document")
}

func TestWriteXLSX_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
